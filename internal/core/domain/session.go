package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// SessionKind is a custom type for the conversation ENUM. Each kind owns
// an independent multi-turn dialog; a user may hold at most one live
// session per kind.
type SessionKind string

const (
	KindOnboarding        SessionKind = "onboarding"
	KindAdvanceRequest    SessionKind = "advance_request"
	KindVacationRequest   SessionKind = "vacation_request"
	KindHRMessage         SessionKind = "hr_message"
	KindDriverReply       SessionKind = "driver_reply"
	KindProfileUpdate     SessionKind = "profile_update"
	KindProfileUpdateDate SessionKind = "profile_update_date"
)

// DocumentType selects which driver document a profile-update
// conversation is replacing.
type DocumentType string

const (
	DocumentDriverLicense DocumentType = "driver_license"
	DocumentMedicalCard   DocumentType = "medical_card"
)

// SessionData is the tagged union of per-kind conversation payloads.
// Each conversation kind carries its own strongly typed partial-fields
// struct; encoding to JSON happens only at the persistence boundary.
type SessionData interface {
	SessionKind() SessionKind
}

// OnboardingData accumulates the driver profile across onboarding steps.
type OnboardingData struct {
	DriverID              int64    `json:"driver_id,omitempty"` // non-zero when resuming a known driver
	FullName              string   `json:"full_name,omitempty"`
	PhoneNumber           string   `json:"phone_number,omitempty"`
	CDLNumber             string   `json:"cdl_number,omitempty"`
	CDLExpiryDate         string   `json:"cdl_expiry_date,omitempty"`
	DOTMedicalCertificate string   `json:"dot_medical_certificate,omitempty"`
	DOTMedicalExpiryDate  string   `json:"dot_medical_expiry_date,omitempty"`
	DriverPhotoURL        string   `json:"driver_photo_url,omitempty"`
	CDLPhotoURL           string   `json:"cdl_photo_url,omitempty"`
	DOTMedicalPhotoURL    string   `json:"dot_medical_photo_url,omitempty"`
	AnalysisWarnings      []string `json:"analysis_warnings,omitempty"`
}

func (OnboardingData) SessionKind() SessionKind { return KindOnboarding }

// AdvanceRequestData accumulates an advance-payment request.
type AdvanceRequestData struct {
	Amount float64 `json:"amount,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

func (AdvanceRequestData) SessionKind() SessionKind { return KindAdvanceRequest }

// VacationRequestData accumulates a vacation request.
type VacationRequestData struct {
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

func (VacationRequestData) SessionKind() SessionKind { return KindVacationRequest }

// HRMessageData correlates an HR actor with the driver they are
// messaging. TargetDriverID is the storage id, never a chat id.
type HRMessageData struct {
	TargetDriverID   int64  `json:"target_driver_id"`
	TargetDriverName string `json:"target_driver_name,omitempty"`
}

func (HRMessageData) SessionKind() SessionKind { return KindHRMessage }

// DriverReplyData carries the destination channel for a driver's reply
// and the HR actor it correlates with (zero when driver-initiated).
type DriverReplyData struct {
	ChannelID int64 `json:"channel_id"`
	HRUserID  int64 `json:"hr_user_id,omitempty"`
}

func (DriverReplyData) SessionKind() SessionKind { return KindDriverReply }

// ProfileUpdateData scopes a document-update conversation to one document.
type ProfileUpdateData struct {
	Document DocumentType `json:"document"`
}

func (ProfileUpdateData) SessionKind() SessionKind { return KindProfileUpdate }

// ProfileUpdateDateData scopes the follow-on expiry-date conversation.
type ProfileUpdateDateData struct {
	Document DocumentType `json:"document"`
}

func (ProfileUpdateDateData) SessionKind() SessionKind { return KindProfileUpdateDate }

// Session is one active conversation for a (user, kind) pair.
type Session struct {
	ID         int64
	TelegramID int64
	Kind       SessionKind
	Step       int
	Data       SessionData
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the session is past its expiry at 'now'.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// DecodeSessionData unmarshals a raw payload into the typed variant for
// the given kind. The persistence adapter calls this when scanning rows.
func DecodeSessionData(kind SessionKind, raw []byte) (SessionData, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	var (
		data SessionData
		err  error
	)
	switch kind {
	case KindOnboarding:
		var d OnboardingData
		err = json.Unmarshal(raw, &d)
		data = d
	case KindAdvanceRequest:
		var d AdvanceRequestData
		err = json.Unmarshal(raw, &d)
		data = d
	case KindVacationRequest:
		var d VacationRequestData
		err = json.Unmarshal(raw, &d)
		data = d
	case KindHRMessage:
		var d HRMessageData
		err = json.Unmarshal(raw, &d)
		data = d
	case KindDriverReply:
		var d DriverReplyData
		err = json.Unmarshal(raw, &d)
		data = d
	case KindProfileUpdate:
		var d ProfileUpdateData
		err = json.Unmarshal(raw, &d)
		data = d
	case KindProfileUpdateDate:
		var d ProfileUpdateDateData
		err = json.Unmarshal(raw, &d)
		data = d
	default:
		return nil, fmt.Errorf("unknown session kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s session data: %w", kind, err)
	}
	return data, nil
}

// EncodeSessionData marshals a typed payload for storage. A nil payload
// encodes as an empty object so rows never carry NULL data.
func EncodeSessionData(data SessionData) ([]byte, error) {
	if data == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(data)
}
