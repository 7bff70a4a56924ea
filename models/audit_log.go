package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit actions
const (
	ActionSignup         = "SIGNUP"
	ActionLogin          = "LOGIN"
	ActionLogout         = "LOGOUT"
	ActionVerifyOTP      = "VERIFY_OTP"
	ActionPasswordChg    = "PASSWORD_CHANGE"
	ActionRecordCreate   = "RECORD_CREATE"
	ActionRecordDelete   = "RECORD_DELETE"
	ActionRecordResubmit = "RECORD_RESUBMIT"
	ActionRecordApprove  = "RECORD_APPROVE"
	ActionRecordReject   = "RECORD_REJECT"
	ActionRecordsExport  = "RECORDS_EXPORT"
	ActionRoleUpdate     = "USER_ROLE_UPDATE"
	ActionAlertResolve   = "ALERT_RESOLVE"
	ActionBlacklistAdd   = "BLACKLIST_ADD"
	ActionBlacklistDel   = "BLACKLIST_REMOVE"
)

type AuditLog struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	UserID    string                 `json:"user_id" bson:"user_id"`
	Action    string                 `json:"action" bson:"action"`
	Details   map[string]interface{} `json:"details,omitempty" bson:"details,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	Timestamp time.Time              `json:"timestamp" bson:"timestamp"`
}
