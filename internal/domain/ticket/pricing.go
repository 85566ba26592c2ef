package ticket

// Type はチケットの種別を表す
type Type string

const (
	TypeFull        Type = "full"
	TypeHalf        Type = "half"
	TypePromotional Type = "promotional"
)

// 種別ごとの料金表（単位: 円相当の最小通貨単位）
var prices = map[Type]int{
	TypeFull:        2000,
	TypeHalf:        1000,
	TypePromotional: 500,
}

// IsValid は定義済みの種別かを返す
func (t Type) IsValid() bool {
	_, ok := prices[t]
	return ok
}

// PriceFor は種別に対応する料金を返す
// 未定義の種別は0
func PriceFor(t Type) int {
	return prices[t]
}
