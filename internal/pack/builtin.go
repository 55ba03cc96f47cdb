package pack

// Builtin returns the packs shipped with the binary, in declaration order.
func Builtin() []*Pack {
	return []*Pack{
		GitPack(),
		FilesystemPack(),
		KafkaPack(),
		MySQLPack(),
		GitHubPack(),
		HAProxyPack(),
	}
}

// DefaultRegistry builds the builtin catalog. A duplicate id here is a
// programming error caught at process startup.
func DefaultRegistry() *Registry {
	return MustRegistry(Builtin()...)
}
