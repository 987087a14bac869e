package binding

// CLong is the Go type matching C long on LLP64 Windows.
type CLong = int32
