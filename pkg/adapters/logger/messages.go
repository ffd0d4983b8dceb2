package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Dataset level messages (info)
		"Opening %s":                          "%s を開いています",
		"Dataset open: %d labels, %d frames":  "データセットを開きました: ラベル %d 件, フレーム %d 枚",
		"Closing dataset":                     "データセットを閉じています",
		"Video loading disabled":              "動画の読み込みは無効です",

		// Archive component
		"Extracting %s to %s":                           "%s を %s に展開中",
		"Archive open: %d labels, %d shapes, %d tracks": "アーカイブを開きました: ラベル %d 件, シェイプ %d 件, トラック %d 件",
		"Located media member %s":                       "メディアメンバー %s を検出しました",
		"Skipping non-media member %s":                  "メディアでないメンバー %s をスキップ",
		"Removing extraction dir %s":                    "展開ディレクトリ %s を削除中",

		// Annotation component
		"Skipping annotation of type %s":            "タイプ %s のアノテーションをスキップ",
		"Built %d standalone shapes and %d tracks":  "独立シェイプ %d 件とトラック %d 件を構築しました",

		// Media component
		"Media source ready: %dx%d, %d frames": "メディアソース準備完了: %dx%d, %d フレーム",
		"Decoded frame %d":                     "フレーム %d をデコードしました",

		// Sequencer
		"Seek to frame %d":             "フレーム %d へシーク",
		"First annotation at frame %d": "最初のアノテーションはフレーム %d",
		"No annotations in dataset":    "データセットにアノテーションがありません",
	})
}
