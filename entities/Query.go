package entities

// ImageUpload is a medicine photo captured by the input layer.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// Query is one search submitted by the user. When Image is set it takes
// precedence over DrugName.
type Query struct {
	DrugName string
	Image    *ImageUpload
}

// IsImage reports whether the query is an image lookup.
func (q Query) IsImage() bool {
	return q.Image != nil
}

// Label returns a short human-readable description of the query for logs and titles.
func (q Query) Label() string {
	if q.Image != nil {
		return q.Image.Filename
	}
	return q.DrugName
}
