package ecr

import "time"

type Repository struct {
	Name           string
	URI            string
	TagMutability  string // MUTABLE / IMMUTABLE
	EncryptionType string // AES256 / KMS / KMS_DSSE
	KMSKey         string
	ImageCount     int
	CreatedAt      time.Time
}

// Encryption renders the encryption setting the way the console does.
func (r Repository) Encryption() string {
	if r.EncryptionType != "KMS" {
		return "AES-256"
	}
	if r.KMSKey == "" {
		return "AWS KMS"
	}
	return "AWS KMS (" + r.KMSKey + ")"
}

// Image is one tag of a pushed image; untagged images are not listed.
type Image struct {
	Tag        string
	Digest     string // truncated to 12 hex digits
	SizeMB     float64
	PushedAt   time.Time
	ScanStatus string // "CRITICAL:n, HIGH:n", "Passed" or "No Scan"
}

type RepositoryDetail struct {
	Repository
	Images []Image // newest first, at most MaxImages
}
