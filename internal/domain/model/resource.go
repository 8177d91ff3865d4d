package model

// UnknownLength marks a resource whose byte length is not known up front
const UnknownLength int64 = -1

// ResourceRef is a file resolved by the file store
type ResourceRef struct {
	// Path is the request path the resource was resolved from
	Path string
	// Name is the location of the file inside the store
	Name string
	// KnownLength is the size in bytes, or UnknownLength
	KnownLength int64
	// ContentType is the media type from the extension table
	ContentType string
}
