package model

// LearningPath is the first branching choice after identity capture.
type LearningPath string

const (
	PathCompetitive LearningPath = "competitive"
	PathBoard       LearningPath = "board"
)

// Valid reports whether p is a known learning path.
func (p LearningPath) Valid() bool {
	return p == PathCompetitive || p == PathBoard
}

// MaterialType is the kind of study material chosen on the board path.
type MaterialType string

const (
	MaterialQuiz       MaterialType = "quiz"
	MaterialPastPapers MaterialType = "past-papers"
	MaterialNotes      MaterialType = "notes"
)

// MaterialTypes lists the selectable material types in display order.
var MaterialTypes = []MaterialType{MaterialQuiz, MaterialPastPapers, MaterialNotes}

// Valid reports whether m is a known material type.
func (m MaterialType) Valid() bool {
	for _, t := range MaterialTypes {
		if t == m {
			return true
		}
	}
	return false
}

// Subjects is the fixed subject list offered on the board path.
var Subjects = []string{
	"Physics",
	"Chemistry",
	"Biology",
	"Mathematics",
	"Computer Science",
	"English",
	"Urdu",
	"Islamiat",
	"Pakistan Studies",
}

// Stage enumerates the selection machine states.
type Stage string

const (
	StageIdentityPending      Stage = "IDENTITY_PENDING"
	StagePathPending          Stage = "PATH_PENDING"
	StageCompetitivePending   Stage = "COMPETITIVE_PENDING"
	StageClassBoardPending    Stage = "CLASS_BOARD_PENDING"
	StageSubjectPending       Stage = "SUBJECT_PENDING"
	StageMaterialTypePending  Stage = "MATERIAL_TYPE_PENDING"
	StageContentListing       Stage = "CONTENT_LISTING"
	StageQuestionSetPending   Stage = "QUESTION_SET_PENDING"
	StageAccessControlPending Stage = "ACCESS_CONTROL_PENDING"
	StageResolved             Stage = "RESOLVED"
)

// Candidate is the identity captured by the first selection stage.
type Candidate struct {
	Name  string `json:"name"`
	ID    string `json:"candidate_id"`
	Photo string `json:"photo,omitempty"`
}

// SelectionProgress is a read-only snapshot of how far the candidate has
// narrowed the selection. Empty fields have not been chosen.
type SelectionProgress struct {
	Stage         Stage        `json:"stage"`
	Candidate     *Candidate   `json:"candidate,omitempty"`
	Path          LearningPath `json:"path,omitempty"`
	Class         string       `json:"class,omitempty"`
	Board         string       `json:"board,omitempty"`
	Subject       string       `json:"subject,omitempty"`
	MaterialType  MaterialType `json:"material_type,omitempty"`
	QuestionSetID SetID        `json:"question_set_id,omitempty"`
}

// SubmitIdentityRequest is the payload for the identity stage.
type SubmitIdentityRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	CandidateID string `json:"candidate_id" binding:"required,candidate_id"`
	Photo       string `json:"photo" binding:"omitempty,max=512"`
}

// ChoosePathRequest is the payload for the path stage.
type ChoosePathRequest struct {
	Path LearningPath `json:"path" binding:"required,oneof=competitive board"`
}

// ChooseClassBoardRequest is the payload for the class/board stage.
type ChooseClassBoardRequest struct {
	Class string `json:"class" binding:"required,max=50"`
	Board string `json:"board" binding:"required,max=100"`
}

// ChooseSubjectRequest is the payload for the subject stage.
type ChooseSubjectRequest struct {
	Subject string `json:"subject" binding:"required,max=100"`
}

// ChooseMaterialTypeRequest is the payload for the material type stage.
type ChooseMaterialTypeRequest struct {
	MaterialType MaterialType `json:"material_type" binding:"required,oneof=quiz past-papers notes"`
}

// SelectQuestionSetRequest is the payload for choosing a question set.
type SelectQuestionSetRequest struct {
	SetID SetID `json:"set_id" binding:"required,max=64"`
}

// AuthenticateRequest carries the shared secret for a protected set.
type AuthenticateRequest struct {
	Secret string `json:"secret" binding:"required,max=256"`
}

// ResumePoint selects where a restart returns to.
type ResumePoint string

const (
	ResumeAtPath        ResumePoint = "path"
	ResumeAtQuestionSet ResumePoint = "question_set"
)

// RestartRequest is the payload for restarting after (or during) an exam.
type RestartRequest struct {
	Resume ResumePoint `json:"resume" binding:"omitempty,oneof=path question_set"`
}
