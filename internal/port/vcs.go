package port

// VCS reports the working tree state of a file.
type VCS interface {
	HasUnstagedChanges(path string) (bool, error)
}
