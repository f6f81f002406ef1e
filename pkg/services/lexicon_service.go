package services

import (
	"regexp"
	"sort"
	"strings"
)

var wordPattern = regexp.MustCompile(`\w+`)

// LexiconService は自由入力テキストから正規化された症状IDを抽出します。
// 抽出は 1)類義語スキャン 2)完全一致スキャン 3)あいまい一致スキャン の
// 3段階すべてを実行し、結果を和集合として返します。
type LexiconService struct {
	dataset  *DatasetService
	synonyms map[string]string // フレーズ -> 正規化症状ID
	cutoff   float64           // あいまい一致の類似度しきい値 (0-1)
}

// NewLexiconService は新しいLexiconServiceを生成します。
func NewLexiconService(dataset *DatasetService, synonyms map[string]string, cutoff float64) *LexiconService {
	if synonyms == nil {
		synonyms = make(map[string]string)
	}
	return &LexiconService{
		dataset:  dataset,
		synonyms: synonyms,
		cutoff:   cutoff,
	}
}

// Extract はテキストから症状IDの集合を抽出します。
// 症状が検出できない場合は空のスライスを返します（エラーではない）。
// 返り値は重複なし・ソート済みで、同じ入力に対して常に同じ結果になります。
func (s *LexiconService) Extract(text string) []string {
	normalized := strings.ToLower(text)
	normalized = strings.ReplaceAll(normalized, "-", " ")

	found := make(map[string]struct{})

	// 1. 類義語スキャン: フレーズが部分文字列として含まれていれば対応IDを採用
	for phrase, mapped := range s.synonyms {
		if strings.Contains(normalized, phrase) {
			found[mapped] = struct{}{}
		}
	}

	// 2. 完全一致スキャン: 症状の可読形（アンダースコア→スペース）で部分一致
	symptoms := s.dataset.Symptoms()
	readable := make([]string, len(symptoms))
	for i, sym := range symptoms {
		readable[i] = strings.ReplaceAll(sym, "_", " ")
		if strings.Contains(normalized, readable[i]) {
			found[sym] = struct{}{}
		}
	}

	// 3. あいまい一致スキャン: 単語ごとに最も近い症状名を探し、
	// 類似度がしきい値以上の場合のみ採用（タイプミス対応）。
	// 同率の場合は辞書順で大きい症状名を採用する。
	for _, word := range wordPattern.FindAllString(normalized, -1) {
		bestIdx := -1
		bestRatio := 0.0
		for i, name := range readable {
			ratio := similarityRatio(word, name)
			if ratio < s.cutoff {
				continue
			}
			if bestIdx == -1 || ratio > bestRatio || (ratio == bestRatio && name > readable[bestIdx]) {
				bestRatio = ratio
				bestIdx = i
			}
		}
		if bestIdx >= 0 {
			found[symptoms[bestIdx]] = struct{}{}
		}
	}

	result := make([]string, 0, len(found))
	for sym := range found {
		result = append(result, sym)
	}
	sort.Strings(result)
	return result
}

// similarityRatio は2つの文字列の類似度を0-1で返します。
// Pythonのdifflib.SequenceMatcher.ratio()と同じ定義
// （最長一致ブロックの再帰分割による一致文字数Mに対する 2*M/(len(a)+len(b))）。
func similarityRatio(a, b string) float64 {
	if len(a)+len(b) == 0 {
		return 0
	}
	matches := matchingLength(a, b, 0, len(a), 0, len(b))
	return 2.0 * float64(matches) / float64(len(a)+len(b))
}

// matchingLength は [alo,ahi) x [blo,bhi) 範囲の一致文字数を数えます。
func matchingLength(a, b string, alo, ahi, blo, bhi int) int {
	besti, bestj, bestsize := findLongestMatch(a, b, alo, ahi, blo, bhi)
	if bestsize == 0 {
		return 0
	}
	total := bestsize
	total += matchingLength(a, b, alo, besti, blo, bestj)
	total += matchingLength(a, b, besti+bestsize, ahi, bestj+bestsize, bhi)
	return total
}

// findLongestMatch は範囲内の最長一致ブロックを返します。
func findLongestMatch(a, b string, alo, ahi, blo, bhi int) (int, int, int) {
	// bの各文字の出現位置を索引化
	b2j := make(map[byte][]int)
	for j := blo; j < bhi; j++ {
		b2j[b[j]] = append(b2j[b[j]], j)
	}

	besti, bestj, bestsize := alo, blo, 0
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, bestsize
}
