package types

type AttendanceSource string

const (
	AttendanceSourceManual      AttendanceSource = "MANUAL"
	AttendanceSourceQRCode      AttendanceSource = "QR_CODE"
	AttendanceSourceFingerprint AttendanceSource = "FINGERPRINT"
)

func (s AttendanceSource) Valid() bool {
	switch s {
	case AttendanceSourceManual, AttendanceSourceQRCode, AttendanceSourceFingerprint:
		return true
	}
	return false
}
