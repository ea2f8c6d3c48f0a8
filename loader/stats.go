package loader

import "sync/atomic"

// Stats summarizes one load.
type Stats struct {
	FilesEnumerated int64 // files matched by suffix
	FilesLoaded     int64 // files fully processed (possibly with bad documents)
	FilesFailed     int64 // files that could not be read or decoded, or whose single document was rejected
	DocumentsAdded  int64
	DocumentsFailed int64
	BytesRead       int64
}

type stats struct {
	filesEnumerated atomic.Int64
	filesLoaded     atomic.Int64
	filesFailed     atomic.Int64
	documentsAdded  atomic.Int64
	documentsFailed atomic.Int64
	bytesRead       atomic.Int64
}

func (s *stats) snapshot() Stats {
	return Stats{
		FilesEnumerated: s.filesEnumerated.Load(),
		FilesLoaded:     s.filesLoaded.Load(),
		FilesFailed:     s.filesFailed.Load(),
		DocumentsAdded:  s.documentsAdded.Load(),
		DocumentsFailed: s.documentsFailed.Load(),
		BytesRead:       s.bytesRead.Load(),
	}
}
