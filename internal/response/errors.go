package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation          ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload      ErrCode = "INVALID_PAYLOAD"
	ErrInvalidIdentity     ErrCode = "INVALID_IDENTITY"
	ErrIncompleteSelection ErrCode = "INCOMPLETE_SELECTION"
	ErrInvalidChoice       ErrCode = "INVALID_CHOICE"

	// ─── Selection ─────────────────────────────────────────────────────
	ErrIllegalTransition   ErrCode = "ILLEGAL_TRANSITION"
	ErrSetUnavailable      ErrCode = "QUESTION_SET_UNAVAILABLE"
	ErrAccessDenied        ErrCode = "ACCESS_DENIED"
	ErrReattemptNotAllowed ErrCode = "REATTEMPT_NOT_ALLOWED"

	// ─── Exam ──────────────────────────────────────────────────────────
	ErrNoActiveExam     ErrCode = "NO_ACTIVE_EXAM"
	ErrExamNotRunning   ErrCode = "EXAM_NOT_RUNNING"
	ErrExamNotFinished  ErrCode = "EXAM_NOT_FINISHED"
	ErrUnknownQuestion  ErrCode = "UNKNOWN_QUESTION"
	ErrOptionOutOfRange ErrCode = "OPTION_OUT_OF_RANGE"

	// ─── Certificates ──────────────────────────────────────────────────
	ErrCertificateInvalid ErrCode = "CERTIFICATE_INVALID"
	ErrArchiveUnavailable ErrCode = "ARCHIVE_UNAVAILABLE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Media ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Server ────────────────────────────────────────────────────────
	ErrRateLimited ErrCode = "RATE_LIMITED"
	ErrInternal    ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidIdentity:
		return "Enter your name and a candidate ID in the form NNNNN-NNNNNNN-N."
	case ErrIncompleteSelection:
		return "Please complete every field of this step."
	case ErrInvalidChoice:
		return "That option is not offered here."

	// ─── Selection ─────────────────────────────────────────────────────
	case ErrIllegalTransition:
		return "That action is not available at this step."
	case ErrSetUnavailable:
		return "This question set is unavailable. Please choose another."
	case ErrAccessDenied:
		return "Access denied."
	case ErrReattemptNotAllowed:
		return "You have already attempted this question set."

	// ─── Exam ──────────────────────────────────────────────────────────
	case ErrNoActiveExam:
		return "No exam has been started."
	case ErrExamNotRunning:
		return "The exam is no longer running."
	case ErrExamNotFinished:
		return "Results are available once the exam is finished."
	case ErrUnknownQuestion:
		return "That question is not part of this exam."
	case ErrOptionOutOfRange:
		return "That option does not exist for this question."

	// ─── Certificates ──────────────────────────────────────────────────
	case ErrCertificateInvalid:
		return "The certificate could not be verified."
	case ErrArchiveUnavailable:
		return "The certificate archive is not available right now."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Media ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File size exceeds the limit."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrRateLimited:
		return "Too many attempts. Please wait and try again."
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
