package extractor

const manifestSeparator = "\n\n---\nPackage.json:\n"

// AssembleDocument joins the README and the optional manifest into the text
// the model reads. An empty manifest object adds nothing.
func AssembleDocument(readme string, m *Manifest) string {
	if !m.present() {
		return readme
	}
	return readme + manifestSeparator + m.Indented()
}
