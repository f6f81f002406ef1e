package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestLexicon(t *testing.T) *LexiconService {
	t.Helper()
	synonyms := map[string]string{
		"high temperature": "fever",
		"feaver":           "fever",
		"coughing":         "cough",
	}
	return NewLexiconService(newTestDataset(t), synonyms, 0.8)
}

func TestExtractExactMatch(t *testing.T) {
	lexicon := newTestLexicon(t)

	symptoms := lexicon.Extract("I have itching and skin rash")
	assert.Equal(t, []string{"itching", "skin_rash"}, symptoms)
}

func TestExtractSynonyms(t *testing.T) {
	lexicon := newTestLexicon(t)

	// "high temperature" は類義語テーブル経由でfeverに正規化される
	symptoms := lexicon.Extract("I have a high temperature and coughing")
	assert.Contains(t, symptoms, "fever")
	assert.Contains(t, symptoms, "cough")
}

func TestExtractFuzzyMatch(t *testing.T) {
	lexicon := newTestLexicon(t)

	// タイプミス "fevr" はあいまい一致でfeverに解決される
	symptoms := lexicon.Extract("I have fevr")
	assert.Equal(t, []string{"fever"}, symptoms)
}

func TestExtractFuzzyTieBreak(t *testing.T) {
	// 複数の症状名が同じ類似度になった場合、辞書順で大きい方が選ばれる
	rows := [][]string{
		{"itching_a", "itching_b", "prognosis"},
		{"1", "0", "Condition A"},
		{"0", "1", "Condition B"},
	}
	dataset := NewDatasetService()
	assert.NoError(t, dataset.LoadRows(rows))
	lexicon := NewLexiconService(dataset, nil, 0.8)

	// "itching" は "itching a" と "itching b" の両方に 14/16 で同率一致する
	assert.InDelta(t, 14.0/16.0, similarityRatio("itching", "itching a"), 1e-9)
	assert.InDelta(t, 14.0/16.0, similarityRatio("itching", "itching b"), 1e-9)

	symptoms := lexicon.Extract("I have itching")
	assert.Equal(t, []string{"itching_b"}, symptoms)
}

func TestExtractNoSymptoms(t *testing.T) {
	lexicon := newTestLexicon(t)

	symptoms := lexicon.Extract("hello there, how are you doing")
	assert.Empty(t, symptoms)
}

func TestExtractDeterministic(t *testing.T) {
	lexicon := newTestLexicon(t)

	first := lexicon.Extract("fever, headache and chills")
	second := lexicon.Extract("fever, headache and chills")
	assert.Equal(t, first, second)

	// 重複なし・ソート済み
	assert.Equal(t, []string{"chills", "fever", "headache"}, first)
}

func TestExtractHyphenNormalization(t *testing.T) {
	lexicon := newTestLexicon(t)

	// ハイフンはスペースに正規化してから照合する
	symptoms := lexicon.Extract("skin-rash")
	assert.Contains(t, symptoms, "skin_rash")
}

func TestSimilarityRatio(t *testing.T) {
	assert.Equal(t, 1.0, similarityRatio("fever", "fever"))
	assert.Equal(t, 0.0, similarityRatio("", ""))

	// "fevr" vs "fever": 一致4文字 → 2*4/(4+5)
	assert.InDelta(t, 8.0/9.0, similarityRatio("fevr", "fever"), 1e-9)

	// 無関係な単語はしきい値を大きく下回る
	assert.Less(t, similarityRatio("have", "fever"), 0.8)
}
