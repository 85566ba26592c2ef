package movie

import "errors"

// Movie ドメインのエラー定義
var (
	ErrMovieNotFound   = errors.New("作品が見つかりません")
	ErrMovieNotShowing = errors.New("作品は現在上映されていません")
	ErrTitleRequired   = errors.New("作品タイトルは必須です")
	ErrInvalidDuration = errors.New("上映時間は1分以上である必要があります")
)
