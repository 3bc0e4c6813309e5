package domain

// VideoUploadTicket describes a presigned upload for an exercise demonstration
// video. The file itself lives in S3; VideoURL is what gets saved on the
// exercise once the client has PUT the object.
type VideoUploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
	VideoURL  string `json:"videoUrl"`
}
