package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// 末尾の ".1" のような重複列サフィックスを除去するためのパターン
var duplicateColumnSuffix = regexp.MustCompile(`\.\d+$`)

// DatasetService は症状インジケータの学習テーブルを読み込み、
// 症状ボキャブラリ（固定列順）・疾病ラベル・疾病ごとの症状プロファイルを提供します。
// 読み込み後は読み取り専用で、全セッションから安全に共有できます。
type DatasetService struct {
	mu           sync.RWMutex
	symptoms     []string       // 特徴量列（固定順）
	symptomIndex map[string]int // 症状名 -> 列位置
	diseases     []string       // 出現順の疾病ラベル
	matrix       [][]float64    // 学習サンプル（バイナリ指標ベクトル）
	labels       []int          // 行ごとの疾病インデックス
	profiles     map[string][]string
	loaded       bool
}

// NewDatasetService は新しいDatasetServiceを生成します。
func NewDatasetService() *DatasetService {
	return &DatasetService{
		symptomIndex: make(map[string]int),
		profiles:     make(map[string][]string),
	}
}

// LoadFromFile はCSVまたはExcelの学習テーブルを読み込みます。
func (s *DatasetService) LoadFromFile(path string) error {
	rows, err := readTableFile(path)
	if err != nil {
		return err
	}
	return s.LoadRows(rows)
}

// readTableFile は拡張子に応じてCSV/Excelを行列として読み込みます。
func readTableFile(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("学習データの読み込みに失敗: %w", err)
	}
	defer file.Close()
	return ReadTable(file, path)
}

// ReadTable はCSVまたはExcel（.xlsx）の表データを行列として読み込みます。
// ファイル名の拡張子でフォーマットを判定します。
func ReadTable(r io.Reader, fileName string) ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(fileName), ".xlsx") {
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("Excelファイルの読み込みに失敗: %w", err)
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("Excelシートの行取得に失敗: %w", err)
		}
		return rows, nil
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // 行ごとの列数ゆらぎを許容する
	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSVのパースに失敗: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// LoadRows はヘッダー付きの行列から学習テーブルを構築します。
// 列数が足りない行やラベルの無い行はスキップされます（ベストエフォート）。
func (s *DatasetService) LoadRows(rows [][]string) error {
	if len(rows) < 2 {
		return fmt.Errorf("学習データが不足しています（ヘッダー + 最低1行が必要）")
	}

	header := rows[0]
	if len(header) < 2 {
		return fmt.Errorf("学習データの列が不足しています")
	}

	// 最終列は疾病ラベル（prognosis）。それ以外が症状列。
	// 重複列（"itching.1" など）は最初の出現のみ採用する。
	symptoms := make([]string, 0, len(header)-1)
	symptomIndex := make(map[string]int)
	colMap := make([]int, 0, len(header)-1) // 採用した元の列位置
	for i := 0; i < len(header)-1; i++ {
		name := duplicateColumnSuffix.ReplaceAllString(strings.TrimSpace(header[i]), "")
		if name == "" {
			continue
		}
		if _, exists := symptomIndex[name]; exists {
			continue
		}
		symptomIndex[name] = len(symptoms)
		symptoms = append(symptoms, name)
		colMap = append(colMap, i)
	}
	labelCol := len(header) - 1

	var (
		diseases     []string
		diseaseIndex = make(map[string]int)
		matrix       [][]float64
		labels       []int
		profiles     = make(map[string][]string)
	)

	for _, row := range rows[1:] {
		if len(row) <= labelCol {
			continue // 短い行はスキップ
		}
		disease := strings.TrimSpace(row[labelCol])
		if disease == "" {
			continue
		}

		vector := make([]float64, len(symptoms))
		for j, src := range colMap {
			if src >= len(row) {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[src]), 64)
			if err != nil {
				continue // 数値でないセルは0扱い
			}
			vector[j] = v
		}

		idx, ok := diseaseIndex[disease]
		if !ok {
			idx = len(diseases)
			diseaseIndex[disease] = idx
			diseases = append(diseases, disease)

			// 疾病プロファイルは最初の学習行から列順で抽出する
			profile := make([]string, 0)
			for j, sym := range symptoms {
				if vector[j] == 1 {
					profile = append(profile, sym)
				}
			}
			profiles[disease] = profile
		}

		matrix = append(matrix, vector)
		labels = append(labels, idx)
	}

	if len(matrix) == 0 {
		return fmt.Errorf("有効な学習行がありません")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.symptoms = symptoms
	s.symptomIndex = symptomIndex
	s.diseases = diseases
	s.matrix = matrix
	s.labels = labels
	s.profiles = profiles
	s.loaded = true
	return nil
}

// Loaded は学習テーブルが読み込み済みかを返します。
func (s *DatasetService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Symptoms は症状ボキャブラリを固定列順で返します。
func (s *DatasetService) Symptoms() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symptoms
}

// SymptomIndex は症状名に対応する列位置を返します。
func (s *DatasetService) SymptomIndex(symptom string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.symptomIndex[symptom]
	return idx, ok
}

// Diseases は疾病ラベルを出現順で返します。
func (s *DatasetService) Diseases() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diseases
}

// TrainingData は分類器の学習用に指標行列とラベル列を返します。
func (s *DatasetService) TrainingData() ([][]float64, []int, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.matrix, s.labels, s.diseases
}

// DiseaseProfile は疾病の症状プロファイル（学習行で観測された症状、列順）を返します。
// 未知の疾病に対しては空のスライスを返します。
func (s *DatasetService) DiseaseProfile(disease string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if profile, ok := s.profiles[disease]; ok {
		return profile
	}
	return []string{}
}
