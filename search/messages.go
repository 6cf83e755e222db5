package search

import "github.com/letmevibethatforyou/unicatalog"

// Messages holds the user-facing text shown for each failure class.
type Messages struct {
	Network     string
	Malformed   string
	NotFound    string
	Unavailable string
}

// EnglishMessages is the default message set.
var EnglishMessages = Messages{
	Network:     "Could not reach the university catalogue. Please try again.",
	Malformed:   "The university catalogue returned an unexpected response.",
	NotFound:    "University not found.",
	Unavailable: "The university catalogue is temporarily unavailable.",
}

// VietnameseMessages is the Vietnamese message set.
var VietnameseMessages = Messages{
	Network:     "Không thể kết nối tới danh sách trường. Vui lòng thử lại.",
	Malformed:   "Dữ liệu danh sách trường không hợp lệ.",
	NotFound:    "Không tìm thấy trường.",
	Unavailable: "Danh sách trường tạm thời không khả dụng.",
}

// For picks the message matching err.
func (m Messages) For(err error) string {
	switch unicatalog.Code(err) {
	case unicatalog.ErrCodeMalformedResponse:
		return m.Malformed
	case unicatalog.ErrCodeNotFound:
		return m.NotFound
	case unicatalog.ErrCodeBackendUnavailable:
		return m.Unavailable
	default:
		return m.Network
	}
}
