package domain

// StoredUpload is an image written to the upload directory.
type StoredUpload struct {
	Filename string `json:"filename"`
	Path     string `json:"-"`
	Size     int64  `json:"size"`
}
