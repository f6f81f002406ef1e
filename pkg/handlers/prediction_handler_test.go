package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"health-chat-api/pkg/models"
	"health-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newPredictionRouter(riskModels *services.RiskModelService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewPredictionHandler(riskModels, nil)
	router.POST("/api/v1/predict/diabetes", handler.PredictDiabetes)
	router.POST("/api/v1/predict/heart-disease", handler.PredictHeartDisease)
	router.POST("/api/v1/predict/parkinsons", handler.PredictParkinsons)
	router.GET("/api/v1/predictions", handler.GetHistory)
	return router
}

func newDiabetesModel() *services.RiskModel {
	return &services.RiskModel{
		Name:          "diabetes",
		FeatureNames:  []string{"pregnancies", "glucose", "blood_pressure", "skin_thickness", "insulin", "bmi", "diabetes_pedigree_function", "age"},
		Means:         make([]float64, 8),
		Stds:          []float64{1, 1, 1, 1, 1, 1, 1, 1},
		Weights:       []float64{0, 1, 0, 0, 0, 0, 0, 0},
		Bias:          -100,
		PositiveLabel: "Diabetic",
		NegativeLabel: "Not Diabetic",
	}
}

func TestPredictDiabetes(t *testing.T) {
	riskModels := services.NewRiskModelService()
	riskModels.Register("diabetes", newDiabetesModel())
	router := newPredictionRouter(riskModels)

	// glucose 200 → スコア100 → 陽性
	w := postJSON(router, "/api/v1/predict/diabetes", models.DiabetesInput{Glucose: 200, BMI: 30, Age: 45})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success     bool                        `json:"success"`
		DiseaseType string                      `json:"disease_type"`
		Result      models.RiskPredictionResult `json:"result"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "diabetes", resp.DiseaseType)
	assert.Equal(t, "Diabetic", resp.Result.Prediction)

	// glucose 50 → スコア-50 → 陰性
	w = postJSON(router, "/api/v1/predict/diabetes", models.DiabetesInput{Glucose: 50})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Not Diabetic", resp.Result.Prediction)
}

func TestPredictModelUnavailable(t *testing.T) {
	router := newPredictionRouter(services.NewRiskModelService())

	w := postJSON(router, "/api/v1/predict/heart-disease", models.HeartDiseaseInput{Age: 60})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestPredictInvalidBody(t *testing.T) {
	riskModels := services.NewRiskModelService()
	riskModels.Register("diabetes", newDiabetesModel())
	router := newPredictionRouter(riskModels)

	req, _ := http.NewRequest("POST", "/api/v1/predict/diabetes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistoryWithoutDatabase(t *testing.T) {
	router := newPredictionRouter(services.NewRiskModelService())

	req, _ := http.NewRequest("GET", "/api/v1/predictions?user_id=u1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// DB未接続時は503
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestFeatureVectorOrder(t *testing.T) {
	diabetes := models.DiabetesInput{Pregnancies: 1, Glucose: 2, BloodPressure: 3, SkinThickness: 4, Insulin: 5, BMI: 6, DiabetesPedigreeFunction: 7, Age: 8}
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7, 8}, diabetes.FeatureVector())

	heart := models.HeartDiseaseInput{Age: 1, Sex: 2, CP: 3, Trestbps: 4, Chol: 5, FBS: 6, Restecg: 7, Thalach: 8, Exang: 9, Oldpeak: 10, Slope: 11, CA: 12, Thal: 13}
	assert.Len(t, heart.FeatureVector(), 13)
	assert.Equal(t, 1.0, heart.FeatureVector()[0])
	assert.Equal(t, 13.0, heart.FeatureVector()[12])

	parkinsons := models.ParkinsonsInput{Fo: 1, PPE: 22}
	assert.Len(t, parkinsons.FeatureVector(), 22)
	assert.Equal(t, 1.0, parkinsons.FeatureVector()[0])
	assert.Equal(t, 22.0, parkinsons.FeatureVector()[21])
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 10, 10))
	assert.Equal(t, 1, totalPages(10, 10, 10))
	assert.Equal(t, 2, totalPages(11, 10, 10))
	assert.Equal(t, 3, totalPages(25, 0, 10))
}
