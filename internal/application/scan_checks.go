package application

import (
	"sync"

	"github.com/sanosuguru/go-cinema-ticketing/internal/domain/ticket"
)

// ScanCheck は入場スキャン時の追加検証ステップ
// グループ検証の前にスキャンされたチケットへ順番に適用される
type ScanCheck func(t *ticket.Ticket) error

// NewDuplicateScanCheck は再スキャンを不正の兆候として拒否するステップを作成する
// 既定ではスキャンの冪等性が優先されるため、呼び出し側が明示的に組み込んだ場合のみ有効
func NewDuplicateScanCheck() ScanCheck {
	var mu sync.Mutex
	seen := make(map[string]struct{})
	return func(t *ticket.Ticket) error {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := seen[t.ID]; ok {
			return ticket.ErrDuplicateScan
		}
		seen[t.ID] = struct{}{}
		return nil
	}
}
