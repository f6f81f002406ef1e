package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"health-chat-api/pkg/models"
)

// 追質問への肯定回答として受け付けるトークン
var affirmativeTokens = map[string]bool{
	"yes":  true,
	"y":    true,
	"true": true,
	"1":    true,
}

// DialogueService はセッションごとの多段階問診フローを制御します。
// ステージ遷移は initial → awaiting_confirmation → complete のみで、
// complete からは明示的なリセットで initial に戻ります。
type DialogueService struct {
	lexicon      *LexiconService
	classifier   *ClassifierService
	knowledge    *KnowledgeBaseService
	dataset      *DatasetService
	store        SessionStore
	quotes       []string
	disclaimer   string
	maxFollowUps int
}

// NewDialogueService は新しいDialogueServiceを生成します。
func NewDialogueService(
	lexicon *LexiconService,
	classifier *ClassifierService,
	knowledge *KnowledgeBaseService,
	dataset *DatasetService,
	store SessionStore,
	quotes []string,
	disclaimer string,
	maxFollowUps int,
) *DialogueService {
	return &DialogueService{
		lexicon:      lexicon,
		classifier:   classifier,
		knowledge:    knowledge,
		dataset:      dataset,
		store:        store,
		quotes:       quotes,
		disclaimer:   disclaimer,
		maxFollowUps: maxFollowUps,
	}
}

// Available はチャットボットが予測可能な状態かを返します。
func (s *DialogueService) Available() bool {
	return s.classifier.Available()
}

// ProcessMessage は1ターン分のメッセージを処理して応答文を返します。
// セッションの状態はターン完了時にまとめて保存されます。
// エラー時は状態を変更しません。
func (s *DialogueService) ProcessMessage(sessionKey, message string) (string, error) {
	state, ok := s.store.Get(sessionKey)
	if !ok {
		state = models.NewDialogueState()
	} else {
		// ストア内の状態を直接書き換えないようコピーを進める
		state = state.Clone()
	}

	reply, err := s.advance(state, message)
	if err != nil {
		return "", err
	}

	s.store.Put(sessionKey, state)
	return reply, nil
}

// Reset はセッションの会話状態を破棄します。
func (s *DialogueService) Reset(sessionKey string) {
	s.store.Delete(sessionKey)
}

// advance は現在のステージに応じて状態を進めます。
// 未知のステージは遷移閉包の外であり、内部整合性エラーとして報告します。
func (s *DialogueService) advance(state *models.DialogueState, message string) (string, error) {
	switch state.Stage {
	case models.StageInitial:
		return s.handleInitial(state, message)
	case models.StageAwaitingConfirmation:
		return s.handleConfirmation(state, message)
	case models.StageComplete:
		return s.handleComplete(state), nil
	default:
		return "", fmt.Errorf("不正な会話ステージです: %q", state.Stage)
	}
}

// handleInitial は最初のメッセージから症状を抽出し、初回予測と追質問を準備します。
func (s *DialogueService) handleInitial(state *models.DialogueState, message string) (string, error) {
	symptoms := s.lexicon.Extract(message)
	if len(symptoms) == 0 {
		// 症状なしはエラーではなく再入力を促す（状態は変更しない）
		return "❌ I couldn't detect any specific symptoms in your message. " +
			"Please describe your symptoms more clearly (e.g., 'I have fever and headache').", nil
	}

	prediction, err := s.classifier.Predict(symptoms)
	if err != nil {
		return "", err
	}

	state.ConfirmedSymptoms = symptoms
	state.LeadingDisease = prediction.Disease
	state.Confidence = prediction.Confidence

	// 追質問キュー = 疾病プロファイル − 確認済み症状（先頭から上限件数まで）
	queue := make([]string, 0, s.maxFollowUps)
	for _, sym := range s.dataset.DiseaseProfile(prediction.Disease) {
		if state.HasSymptom(sym) {
			continue
		}
		queue = append(queue, sym)
		if len(queue) >= s.maxFollowUps {
			break
		}
	}
	state.FollowUpQueue = queue
	state.FollowUpCursor = 0

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ I detected these symptoms: %s\n\n", strings.Join(readableAll(symptoms), ", ")))
	sb.WriteString(fmt.Sprintf("🤖 Based on your symptoms, you might have **%s** (Confidence: %s%%)\n\n",
		prediction.Disease, formatConfidence(prediction.Confidence)))
	sb.WriteString(fmt.Sprintf("📖 About %s: %s\n\n", prediction.Disease, s.knowledge.Description(prediction.Disease)))

	if len(queue) == 0 {
		// 追加で聞くことがなければこの場で診断を確定する
		state.Stage = models.StageComplete
		sb.WriteString(s.diagnosisReply(state))
		return sb.String(), nil
	}

	state.Stage = models.StageAwaitingConfirmation
	sb.WriteString("Let me ask you a few more questions to get a more accurate diagnosis:\n")
	sb.WriteString(s.followUpQuestion(queue[0]))
	return sb.String(), nil
}

// handleConfirmation はyes/no回答を処理し、次の質問または最終診断を返します。
func (s *DialogueService) handleConfirmation(state *models.DialogueState, message string) (string, error) {
	answer := strings.TrimSpace(strings.ToLower(message))
	if affirmativeTokens[answer] && state.FollowUpCursor < len(state.FollowUpQueue) {
		pending := state.FollowUpQueue[state.FollowUpCursor]
		if !state.HasSymptom(pending) {
			state.ConfirmedSymptoms = append(state.ConfirmedSymptoms, pending)
		}
	}

	state.FollowUpCursor++

	if state.FollowUpCursor < len(state.FollowUpQueue) {
		return s.followUpQuestion(state.FollowUpQueue[state.FollowUpCursor]), nil
	}

	// 全質問に回答済み: 確定予測を行い診断を提示する
	prediction, err := s.classifier.Predict(state.ConfirmedSymptoms)
	if err != nil {
		return "", err
	}
	state.LeadingDisease = prediction.Disease
	state.Confidence = prediction.Confidence
	state.Stage = models.StageComplete

	return s.diagnosisReply(state), nil
}

// handleComplete は診断完了後のメッセージを受けて会話をリセットします。
// メッセージの内容は意図的に無視されます（新しい相談の開始として扱う）。
func (s *DialogueService) handleComplete(state *models.DialogueState) string {
	fresh := models.NewDialogueState()
	*state = *fresh
	return "🔄 Starting a new consultation. Please describe your symptoms (e.g., 'I have fever and headache')."
}

// diagnosisReply は最終診断文（診断・説明・予防策・応援メッセージ・免責文）を構築します。
func (s *DialogueService) diagnosisReply(state *models.DialogueState) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎯 **Final Diagnosis**: %s (Confidence: %s%%)\n\n",
		state.LeadingDisease, formatConfidence(state.Confidence)))
	sb.WriteString(fmt.Sprintf("📖 **About %s**: %s\n\n",
		state.LeadingDisease, s.knowledge.Description(state.LeadingDisease)))

	precautions := s.knowledge.Precautions(state.LeadingDisease)
	if len(precautions) > 0 {
		sb.WriteString("🛡️ **Recommended Precautions**:\n")
		for i, p := range precautions {
			sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, p))
		}
		sb.WriteString("\n")
	}

	if len(s.quotes) > 0 {
		sb.WriteString(fmt.Sprintf("💡 %s\n\n", s.quotes[rand.Intn(len(s.quotes))]))
	}
	sb.WriteString(s.disclaimer)
	return sb.String()
}

// followUpQuestion は追質問文を構築します。
func (s *DialogueService) followUpQuestion(symptom string) string {
	return fmt.Sprintf("👉 Do you also have %s? (yes/no)", readable(symptom))
}

// readable は症状IDを可読形に変換します。
func readable(symptom string) string {
	return strings.ReplaceAll(symptom, "_", " ")
}

// readableAll は症状IDのスライスを可読形に変換します。
func readableAll(symptoms []string) []string {
	out := make([]string, len(symptoms))
	for i, sym := range symptoms {
		out[i] = readable(sym)
	}
	return out
}

// formatConfidence は確信度を余分なゼロなしで文字列化します（98.5 → "98.5"）。
func formatConfidence(confidence float64) string {
	return strconv.FormatFloat(confidence, 'f', -1, 64)
}
