package build

// Plan loads every input file's header and orders them so each module
// follows every current-package module it imports, the single
// preparation step both the inline driver and Ninja-file generation
// build on.
func Plan(paths []string, deterministic bool) ([]ModuleHeader, []error) {
	headers, errs := LoadHeaders(paths)
	if len(errs) > 0 {
		return nil, errs
	}
	sorted, err := TopoSort(headers, deterministic)
	if err != nil {
		return nil, []error{err}
	}
	return sorted, nil
}
