package redis

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "statusboard"

// Keys builds the Redis key names of one namespace.
type Keys struct {
	prefix string
}

// NewKeys returns the key builder for prefix, falling back to DefaultPrefix.
func NewKeys(prefix string) Keys {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Keys{prefix: prefix}
}

// Service returns the key holding a service document.
func (k Keys) Service(id string) string {
	return k.prefix + ":service:" + id
}

// AllServices returns the key of the set of all service IDs.
func (k Keys) AllServices() string {
	return k.prefix + ":services:all"
}

// ServiceName returns the key mapping a normalized name to a service ID.
func (k Keys) ServiceName(normalized string) string {
	return k.prefix + ":service-name:" + normalized
}

// Report returns the key holding a report document.
func (k Keys) Report(id string) string {
	return k.prefix + ":report:" + id
}

// Timeline returns the sorted set of all report IDs scored by time.
func (k Keys) Timeline() string {
	return k.prefix + ":reports:timeline"
}

// ServiceReports returns the sorted set of one service's report IDs.
func (k Keys) ServiceReports(serviceID string) string {
	return k.prefix + ":service-reports:" + serviceID
}

// Pattern matches every key of the namespace.
func (k Keys) Pattern() string {
	return k.prefix + ":*"
}
