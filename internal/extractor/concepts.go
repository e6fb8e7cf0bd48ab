package extractor

// Concept names the model is asked to fill.
const (
	ConceptServerName          = "Server Name"
	ConceptDescription         = "Description"
	ConceptInstallationCommand = "Installation Command"
	ConceptExecutionCommand    = "Execution Command"
	ConceptEnvVariables        = "Environment Variables"
	ConceptCommandArguments    = "Command Arguments"
	ConceptCapabilities        = "Capabilities"
	ConceptConfiguration       = "Configuration"
)

// Concept is a named extraction target.
type Concept struct {
	Name        string
	Description string
}

// TextConcepts are answered with free text.
var TextConcepts = []Concept{
	{Name: ConceptServerName, Description: "The name of the MCP server"},
	{Name: ConceptDescription, Description: "A brief description of what the server does"},
	{Name: ConceptInstallationCommand, Description: "The command to install the server (npm install, pip install, etc)"},
	{Name: ConceptExecutionCommand, Description: "The command to run the server"},
	{Name: ConceptEnvVariables, Description: "Environment variables required by the server, with descriptions"},
	{Name: ConceptCommandArguments, Description: "Command line arguments supported by the server"},
	{Name: ConceptCapabilities, Description: "MCP capabilities: tools, resources, prompts, logging"},
}

// ConfigurationConcept is answered with an object matching Schema.
var ConfigurationConcept = Concept{
	Name:        ConceptConfiguration,
	Description: "Complete MCP server configuration",
}

// Result is what one extraction run returned. A concept missing from Values
// produced no value; Configuration is empty when the structured concept was
// not answered.
type Result struct {
	Values        map[string]string
	Configuration ConfigMap
}

// Value returns the text value of a concept.
func (r *Result) Value(name string) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.Values[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
