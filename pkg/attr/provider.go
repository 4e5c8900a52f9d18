package attr

// Local restricts p to its own scope: lookups are never passed to parents.
func Local(p Provider) Provider {
	if p == nil {
		return nil
	}
	return localProvider{p}
}

type localProvider struct {
	Provider
}

func (l localProvider) AttributeValue(namespace, key string, _ bool) (string, bool) {
	return l.Provider.AttributeValue(namespace, key, false)
}
