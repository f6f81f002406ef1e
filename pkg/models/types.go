package models

import "time"

// ChatRequest represents an incoming chatbot message
type ChatRequest struct {
	Message    string `json:"message" binding:"required"`
	SessionKey string `json:"session_key,omitempty"` // セッションキーで会話を紐付け
	UserID     string `json:"user_id,omitempty"`     // ユーザーIDで履歴を管理
}

// ChatResponse represents the chatbot reply envelope
type ChatResponse struct {
	Response   string `json:"response"`
	Type       string `json:"type"` // "success" or "error"
	SessionKey string `json:"session_key,omitempty"`
}

// ResetRequest represents a session reset request
type ResetRequest struct {
	SessionKey string `json:"session_key" binding:"required"`
}

// DialogueStage is the conversation stage of a chatbot session
type DialogueStage string

const (
	StageInitial              DialogueStage = "initial"
	StageAwaitingConfirmation DialogueStage = "awaiting_confirmation"
	StageComplete             DialogueStage = "complete"
)

// DialogueState は1セッション分の会話状態。
// ConfirmedSymptomsは会話中に増えるのみで、FollowUpCursorは単調増加する。
type DialogueState struct {
	Stage             DialogueStage `json:"stage"`
	ConfirmedSymptoms []string      `json:"confirmed_symptoms"`
	LeadingDisease    string        `json:"leading_disease,omitempty"`
	Confidence        float64       `json:"confidence"`
	FollowUpQueue     []string      `json:"follow_up_queue"`
	FollowUpCursor    int           `json:"follow_up_cursor"`
}

// NewDialogueState returns a fresh state in the initial stage
func NewDialogueState() *DialogueState {
	return &DialogueState{
		Stage:             StageInitial,
		ConfirmedSymptoms: []string{},
		FollowUpQueue:     []string{},
	}
}

// Clone returns a deep copy of the state
func (s *DialogueState) Clone() *DialogueState {
	c := *s
	c.ConfirmedSymptoms = append([]string(nil), s.ConfirmedSymptoms...)
	c.FollowUpQueue = append([]string(nil), s.FollowUpQueue...)
	return &c
}

// HasSymptom reports whether the symptom is already confirmed
func (s *DialogueState) HasSymptom(symptom string) bool {
	for _, v := range s.ConfirmedSymptoms {
		if v == symptom {
			return true
		}
	}
	return false
}

// RiskPredictionResult is the outcome of a single risk-model prediction
type RiskPredictionResult struct {
	Prediction          string  `json:"prediction"`
	Confidence          float64 `json:"confidence"`
	ProbabilityPositive float64 `json:"probability_positive"`
	ProbabilityNegative float64 `json:"probability_negative"`
}

// DiabetesInput holds the diabetes risk form values
type DiabetesInput struct {
	Pregnancies              float64 `json:"pregnancies"`
	Glucose                  float64 `json:"glucose"`
	BloodPressure            float64 `json:"blood_pressure"`
	SkinThickness            float64 `json:"skin_thickness"`
	Insulin                  float64 `json:"insulin"`
	BMI                      float64 `json:"bmi"`
	DiabetesPedigreeFunction float64 `json:"diabetes_pedigree_function"`
	Age                      float64 `json:"age"`
}

// FeatureVector returns the model input in training column order
func (in *DiabetesInput) FeatureVector() []float64 {
	return []float64{
		in.Pregnancies, in.Glucose, in.BloodPressure, in.SkinThickness,
		in.Insulin, in.BMI, in.DiabetesPedigreeFunction, in.Age,
	}
}

// HeartDiseaseInput holds the heart disease risk form values
type HeartDiseaseInput struct {
	Age      float64 `json:"age"`
	Sex      float64 `json:"sex"`
	CP       float64 `json:"cp"`
	Trestbps float64 `json:"trestbps"`
	Chol     float64 `json:"chol"`
	FBS      float64 `json:"fbs"`
	Restecg  float64 `json:"restecg"`
	Thalach  float64 `json:"thalach"`
	Exang    float64 `json:"exang"`
	Oldpeak  float64 `json:"oldpeak"`
	Slope    float64 `json:"slope"`
	CA       float64 `json:"ca"`
	Thal     float64 `json:"thal"`
}

// FeatureVector returns the model input in training column order
func (in *HeartDiseaseInput) FeatureVector() []float64 {
	return []float64{
		in.Age, in.Sex, in.CP, in.Trestbps, in.Chol, in.FBS, in.Restecg,
		in.Thalach, in.Exang, in.Oldpeak, in.Slope, in.CA, in.Thal,
	}
}

// ParkinsonsInput holds the Parkinson's risk form values (voice measurements)
type ParkinsonsInput struct {
	Fo            float64 `json:"fo"`
	Fhi           float64 `json:"fhi"`
	Flo           float64 `json:"flo"`
	JitterPercent float64 `json:"jitter_percent"`
	JitterAbs     float64 `json:"jitter_abs"`
	RAP           float64 `json:"rap"`
	PPQ           float64 `json:"ppq"`
	DDP           float64 `json:"ddp"`
	Shimmer       float64 `json:"shimmer"`
	ShimmerDB     float64 `json:"shimmer_db"`
	APQ3          float64 `json:"apq3"`
	APQ5          float64 `json:"apq5"`
	APQ           float64 `json:"apq"`
	DDA           float64 `json:"dda"`
	NHR           float64 `json:"nhr"`
	HNR           float64 `json:"hnr"`
	RPDE          float64 `json:"rpde"`
	DFA           float64 `json:"dfa"`
	Spread1       float64 `json:"spread1"`
	Spread2       float64 `json:"spread2"`
	D2            float64 `json:"d2"`
	PPE           float64 `json:"ppe"`
}

// FeatureVector returns the model input in training column order
func (in *ParkinsonsInput) FeatureVector() []float64 {
	return []float64{
		in.Fo, in.Fhi, in.Flo, in.JitterPercent, in.JitterAbs, in.RAP,
		in.PPQ, in.DDP, in.Shimmer, in.ShimmerDB, in.APQ3, in.APQ5,
		in.APQ, in.DDA, in.NHR, in.HNR, in.RPDE, in.DFA, in.Spread1,
		in.Spread2, in.D2, in.PPE,
	}
}

// Doctor represents one entry of the doctor directory
type Doctor struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Specialization  string    `json:"specialization"`
	Location        string    `json:"location"`
	PhoneNumber     string    `json:"phone_number"`
	Email           string    `json:"email"`
	Rating          float64   `json:"rating"`
	Fees            float64   `json:"fees"`
	ExperienceYears int       `json:"experience_years"`
	Bio             string    `json:"bio,omitempty"`
	IsAvailable     bool      `json:"is_available"`
	CreatedAt       time.Time `json:"created_at"`
}

// DoctorSearchQuery holds the doctor directory filters
type DoctorSearchQuery struct {
	Specialization string
	Location       string
	MinRating      *float64
	MaxFees        *float64
	Page           int
	PageSize       int
}

// PredictionRecord is one saved risk prediction
type PredictionRecord struct {
	ID               int64                  `json:"id"`
	UserID           string                 `json:"user_id"`
	DiseaseType      string                 `json:"disease_type"`
	PredictionResult string                 `json:"prediction_result"`
	ConfidenceScore  float64                `json:"confidence_score"`
	InputData        map[string]interface{} `json:"input_data"`
	CreatedAt        time.Time              `json:"created_at"`
}

// ContactMessage is one message submitted via the contact form
type ContactMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" binding:"required"`
	Email     string    `json:"email" binding:"required,email"`
	Subject   string    `json:"subject" binding:"required"`
	Message   string    `json:"message" binding:"required"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
