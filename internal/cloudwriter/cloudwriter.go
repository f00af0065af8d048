package cloudwriter

// CloudWriter buffers bytes for a single remote object; the object is
// uploaded on Close.
type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(bucket, objectPath string) (CloudWriter, error)
}
