package entity

// MediaKind selects the allow-list and size ceiling applied to an upload.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// MediaRef is a stored asset. URL is public; ID is the storage key used for deletion.
type MediaRef struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// IsZero reports whether the reference points at nothing.
func (m MediaRef) IsZero() bool {
	return m.ID == "" && m.URL == ""
}

// MediaFile is an upload received from a client.
type MediaFile struct {
	Filename string
	Size     int64
	Content  []byte
}
