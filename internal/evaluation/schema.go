package evaluation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// PassThreshold 及格线：totalScore >= 70 视为通过
const PassThreshold = 70

// totalScoreTolerance 后端声称的总分与按维度重算的总分允许的最大偏差，
// 超出即判为 SchemaViolation
const totalScoreTolerance = 1

// DimensionWeights 四个评分维度的固定权重，权重和必须为 1.0。
// 权重是策略常量，不接受后端或用户输入。
var DimensionWeights = map[string]float64{
	"correctness": 0.4,
	"efficiency":  0.2,
	"quality":     0.2,
	"compliance":  0.2,
}

// Dimension 单个评分维度：归一化得分 [0,1] 与评分理由
type Dimension struct {
	Score     float64 `json:"score"`
	Weight    float64 `json:"weight"`
	Reasoning string  `json:"reasoning"`
}

// Dimensions 恰好四个命名维度
type Dimensions struct {
	Correctness Dimension `json:"correctness"`
	Efficiency  Dimension `json:"efficiency"`
	Quality     Dimension `json:"quality"`
	Compliance  Dimension `json:"compliance"`
}

type SecurityAudit struct {
	Safe   bool     `json:"safe"`
	Issues []string `json:"issues"`
}

type Feedback struct {
	Strengths     []string      `json:"strengths"`
	Weaknesses    []string      `json:"weaknesses"`
	SecurityAudit SecurityAudit `json:"securityAudit"`
}

// Result 经过校验的评测结果，是评分管线内部流转的唯一可信类型
type Result struct {
	Timestamp    string     `json:"timestamp"`
	ModelVersion string     `json:"modelVersion"`
	TotalScore   int        `json:"totalScore"`
	Passed       bool       `json:"passed"`
	Dimensions   Dimensions `json:"dimensions"`
	Feedback     Feedback   `json:"feedback"`
}

// SchemaViolationError 结构校验失败，Violations 列出所有不合规字段
type SchemaViolationError struct {
	Violations []string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("evaluation result failed schema validation: %s", strings.Join(e.Violations, "; "))
}

// wire 类型只用于解码不可信的后端输出。
// 必填字段用指针区分"缺失"与"零值"（0 分和 false 都是合法取值）。
type wireDimension struct {
	Score     *float64 `json:"score"`
	Weight    *float64 `json:"weight"`
	Reasoning string   `json:"reasoning"`
}

type wireSecurityAudit struct {
	Safe   *bool    `json:"safe"`
	Issues []string `json:"issues"`
}

type wireFeedback struct {
	Strengths     []string           `json:"strengths"`
	Weaknesses    []string           `json:"weaknesses"`
	SecurityAudit *wireSecurityAudit `json:"securityAudit"`
}

type wireResult struct {
	Timestamp    string                    `json:"timestamp" validate:"required"`
	ModelVersion string                    `json:"modelVersion" validate:"required"`
	TotalScore   *int                      `json:"totalScore" validate:"required"`
	Passed       *bool                     `json:"passed" validate:"required"`
	Dimensions   map[string]*wireDimension `json:"dimensions" validate:"required"`
	Feedback     *wireFeedback             `json:"feedback" validate:"required"`
}

var validate = validator.New()

// ValidateResult 解析并校验推理后端返回的原始 JSON。
// 全量拒绝语义：任何结构问题都返回 SchemaViolationError 并列出全部违规字段，
// 不做部分接受，也不对越界数值做静默修正。
//
// 总分不信任后端断言：按维度得分 × 权重重算，偏差超过 ±1 判为违规，
// 偏差以内以重算值为准（保证 totalScore == floor(Σ score*weight × 100) 不变量）。
func ValidateResult(raw []byte) (*Result, error) {
	var wire wireResult
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("evaluation result is not valid JSON: %w", err)
	}

	var violations []string

	if err := validate.Struct(&wire); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				violations = append(violations, fmt.Sprintf("%s: failed %q", jsonFieldPath(fe), fe.Tag()))
			}
		} else {
			return nil, err
		}
	}

	violations = append(violations, checkDimensions(wire.Dimensions)...)

	if wire.TotalScore != nil && (*wire.TotalScore < 0 || *wire.TotalScore > 100) {
		violations = append(violations, fmt.Sprintf("totalScore: %d out of range [0,100]", *wire.TotalScore))
	}

	if wire.Feedback != nil {
		if wire.Feedback.SecurityAudit == nil {
			violations = append(violations, "feedback.securityAudit: required field missing")
		} else if wire.Feedback.SecurityAudit.Safe == nil {
			violations = append(violations, "feedback.securityAudit.safe: required field missing")
		}
	}

	// 交叉不变量只有在结构完整时才能判定。不安全结果强制零分，
	// 此时总分与维度得分必然不一致，跳过一致性检查。
	recomputed := -1
	if len(violations) == 0 {
		recomputed = recomputeTotal(wire.Dimensions)
		unsafe := !*wire.Feedback.SecurityAudit.Safe

		if !unsafe {
			if diff := recomputed - *wire.TotalScore; diff > totalScoreTolerance || diff < -totalScoreTolerance {
				violations = append(violations,
					fmt.Sprintf("totalScore: claimed %d but weighted dimensions give %d", *wire.TotalScore, recomputed))
			}
			if *wire.Passed != (*wire.TotalScore >= PassThreshold) {
				violations = append(violations,
					fmt.Sprintf("passed: %t inconsistent with totalScore %d (threshold %d)", *wire.Passed, *wire.TotalScore, PassThreshold))
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		return nil, &SchemaViolationError{Violations: violations}
	}

	res := &Result{
		Timestamp:    wire.Timestamp,
		ModelVersion: wire.ModelVersion,
		TotalScore:   recomputed,
		Passed:       recomputed >= PassThreshold,
		Dimensions: Dimensions{
			Correctness: toDimension(wire.Dimensions["correctness"]),
			Efficiency:  toDimension(wire.Dimensions["efficiency"]),
			Quality:     toDimension(wire.Dimensions["quality"]),
			Compliance:  toDimension(wire.Dimensions["compliance"]),
		},
		Feedback: Feedback{
			Strengths:  wire.Feedback.Strengths,
			Weaknesses: wire.Feedback.Weaknesses,
			SecurityAudit: SecurityAudit{
				Safe:   *wire.Feedback.SecurityAudit.Safe,
				Issues: wire.Feedback.SecurityAudit.Issues,
			},
		},
	}

	// 安全审计判为不安全时强制零分，优先级高于维度得分
	if !res.Feedback.SecurityAudit.Safe {
		res.TotalScore = 0
		res.Passed = false
	}

	return res, nil
}

// checkDimensions 校验维度键集合恰好为四个已知维度，且每个维度的
// 得分在 [0,1]、权重等于固定值
func checkDimensions(dims map[string]*wireDimension) []string {
	if dims == nil {
		return nil // validator 已报告 required
	}

	var violations []string

	for name := range dims {
		if _, ok := DimensionWeights[name]; !ok {
			violations = append(violations, fmt.Sprintf("dimensions.%s: unknown dimension key", name))
		}
	}

	for name, weight := range DimensionWeights {
		dim, ok := dims[name]
		if !ok {
			violations = append(violations, fmt.Sprintf("dimensions.%s: required dimension missing", name))
			continue
		}
		if dim == nil {
			violations = append(violations, fmt.Sprintf("dimensions.%s: must be an object", name))
			continue
		}
		if dim.Score == nil {
			violations = append(violations, fmt.Sprintf("dimensions.%s.score: required field missing", name))
		} else if *dim.Score < 0 || *dim.Score > 1 {
			violations = append(violations, fmt.Sprintf("dimensions.%s.score: %g out of range [0,1]", name, *dim.Score))
		}
		if dim.Weight == nil {
			violations = append(violations, fmt.Sprintf("dimensions.%s.weight: required field missing", name))
		} else if math.Abs(*dim.Weight-weight) > 1e-9 {
			violations = append(violations, fmt.Sprintf("dimensions.%s.weight: %g must be %g", name, *dim.Weight, weight))
		}
	}

	return violations
}

// recomputeTotal 按固定权重重算总分：floor(Σ score*weight × 100)。
// 调用前提是 checkDimensions 已通过。
func recomputeTotal(dims map[string]*wireDimension) int {
	sum := 0.0
	for name, weight := range DimensionWeights {
		sum += *dims[name].Score * weight
	}
	// 1e-9 吸收浮点误差，避免 0.82*100 之类落在 81.999... 上
	return int(math.Floor(sum*100 + 1e-9))
}

func toDimension(w *wireDimension) Dimension {
	return Dimension{Score: *w.Score, Weight: *w.Weight, Reasoning: w.Reasoning}
}

// jsonFieldPath 把 validator 的结构体字段路径转成 JSON 字段路径，报错信息
// 与后端实际返回的字段名对齐
func jsonFieldPath(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}
	parts := strings.Split(path, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToLower(p[:1]) + p[1:]
	}
	return strings.Join(parts, ".")
}
