package schema

import (
	"encoding/base64"

	"github.com/gabriel-vasile/mimetype"
)

// Attachement message attachement
type Attachement struct {
	// ImageURLs attached image_url
	ImageURLs []string `json:"image_url,omitempty"`
	// Images attached inline images, sent as data URLs
	Images []Image `json:"-"`
}

// URLs returns every image as a URL, inline images encoded as data URLs
func (a *Attachement) URLs() []string {
	if a == nil {
		return nil
	}
	ret := make([]string, 0, len(a.ImageURLs)+len(a.Images))
	ret = append(ret, a.ImageURLs...)
	for _, img := range a.Images {
		ret = append(ret, img.DataURL())
	}
	return ret
}

// Image is raw image bytes with their MIME type
type Image struct {
	Data []byte
	MIME string
}

// NewImage returns an Image, detecting the MIME type from content
func NewImage(data []byte) Image {
	return Image{
		Data: data,
		MIME: mimetype.Detect(data).String(),
	}
}

// DataURL encodes the image as a base64 data URL
func (i Image) DataURL() string {
	mime := i.MIME
	if mime == "" {
		mime = mimetype.Detect(i.Data).String()
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}
