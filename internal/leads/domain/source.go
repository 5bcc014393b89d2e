package domain

// Source records where a lead came from.
type Source string

const (
	SourceYoutube         Source = "youtube"
	SourceNewsletter      Source = "newsletter"
	SourceManual          Source = "manual"
	SourceInboundWhatsApp Source = "inbound_whatsapp"
	SourceUploadCSV       Source = "upload_csv"
	SourceExternal        Source = "external"
)

// ValidSource reports whether s is a known lead source.
func ValidSource(s Source) bool {
	switch s {
	case SourceYoutube, SourceNewsletter, SourceManual, SourceInboundWhatsApp, SourceUploadCSV, SourceExternal:
		return true
	}
	return false
}
