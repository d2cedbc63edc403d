package builder

// AliasMap resolves a flow author's operation-type tag to its canonical
// name understood by the parser registry. This generalizes the field-name
// taxonomy mapping idea to operator names: a deployment may want its
// authoring UI to emit "greater_than" while the registry only knows the
// canonical "gtNode".
type AliasMap struct {
	aliases map[string]string
}

func NewAliasMap() *AliasMap {
	return &AliasMap{aliases: make(map[string]string)}
}

// Add registers a mapping from a user-facing operation name to the
// canonical name the parser registry is keyed by.
func (m *AliasMap) Add(userName, canonicalName string) {
	m.aliases[userName] = canonicalName
}

// Resolve returns the canonical name for a user-facing operation tag,
// falling back to the tag itself when no alias was registered — so
// authoring the canonical name directly always works.
func (m *AliasMap) Resolve(operationType string) string {
	if canonical, ok := m.aliases[operationType]; ok {
		return canonical
	}
	return operationType
}
