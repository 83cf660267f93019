package signal

import "testing"

func TestScoreBookLookup_OwnTimeframe(t *testing.T) {
	book := ScoreBook{
		"1h": {{StrategyName: "rsi", Score: 0.7}},
		"4h": {{StrategyName: "rsi", Score: 0.9}},
	}

	if got := book.Lookup("rsi", "1h"); got != 0.7 {
		t.Errorf("expected own-timeframe score 0.7, got %f", got)
	}
}

func TestScoreBookLookup_FallbackScan(t *testing.T) {
	book := ScoreBook{
		"1d": {{StrategyName: "macd", Score: 0.8}},
	}

	// Not recorded on 1h, found on 1d
	if got := book.Lookup("macd", "1h"); got != 0.8 {
		t.Errorf("expected fallback score 0.8, got %f", got)
	}
}

func TestScoreBookLookup_Default(t *testing.T) {
	book := ScoreBook{
		"1h": {{StrategyName: "rsi", Score: 0.7}},
	}

	if got := book.Lookup("unknown", "1h"); got != DefaultScore {
		t.Errorf("expected default score %f, got %f", DefaultScore, got)
	}

	var nilBook ScoreBook
	if got := nilBook.Lookup("rsi", "1h"); got != DefaultScore {
		t.Errorf("nil book should default, got %f", got)
	}
}

func TestScoreBookLookup_ClampsScore(t *testing.T) {
	book := ScoreBook{
		"1h": {{StrategyName: "wild", Score: 1.7}},
	}

	if got := book.Lookup("wild", "1h"); got != 1.0 {
		t.Errorf("score should clamp to 1.0, got %f", got)
	}
}
