package services

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// NoDescriptionAvailable は説明が登録されていない疾病に返す既定文です。
const NoDescriptionAvailable = "No description available."

// KnowledgeBaseService は疾病ごとの説明・予防策と症状ごとの重症度を提供します。
// 各テーブルは起動時にCSVから読み込まれ、以降は読み取り専用です。
// 行が壊れている・列が足りない場合はその行だけをスキップします（ベストエフォート）。
type KnowledgeBaseService struct {
	mu           sync.RWMutex
	severity     map[string]int
	descriptions map[string]string
	precautions  map[string][]string
}

// NewKnowledgeBaseService は新しいKnowledgeBaseServiceを生成します。
func NewKnowledgeBaseService() *KnowledgeBaseService {
	return &KnowledgeBaseService{
		severity:     make(map[string]int),
		descriptions: make(map[string]string),
		precautions:  make(map[string][]string),
	}
}

// LoadSeverity は症状ごとの重症度テーブル（symptom,weight）を読み込みます。
func (s *KnowledgeBaseService) LoadSeverity(path string) error {
	rows, err := readCSVRows(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		weight, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			continue
		}
		s.severity[strings.TrimSpace(row[0])] = weight
	}
	return nil
}

// LoadDescriptions は疾病ごとの説明テーブル（disease,description）を読み込みます。
func (s *KnowledgeBaseService) LoadDescriptions(path string) error {
	rows, err := readCSVRows(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		s.descriptions[strings.TrimSpace(row[0])] = row[1]
	}
	return nil
}

// LoadPrecautions は疾病ごとの予防策テーブル（disease,p1,p2,p3,p4）を読み込みます。
func (s *KnowledgeBaseService) LoadPrecautions(path string) error {
	rows, err := readCSVRows(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		s.precautions[strings.TrimSpace(row[0])] = []string{row[1], row[2], row[3], row[4]}
	}
	return nil
}

// Description は疾病の説明を返します。未登録の場合は既定文を返します。
func (s *KnowledgeBaseService) Description(disease string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if desc, ok := s.descriptions[disease]; ok {
		return desc
	}
	return NoDescriptionAvailable
}

// Precautions は疾病の予防策リスト（最大4件、順序固定）を返します。
// 未登録の場合は空のスライスを返します。
func (s *KnowledgeBaseService) Precautions(disease string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if list, ok := s.precautions[disease]; ok {
		return list
	}
	return []string{}
}

// Severity は症状の重症度を返します。
func (s *KnowledgeBaseService) Severity(symptom string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	weight, ok := s.severity[symptom]
	return weight, ok
}

// readCSVRows はCSVファイルを全行読み込みます。列数のゆらぎは許容します。
func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// 壊れた行はスキップして読み込みを継続する
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}
