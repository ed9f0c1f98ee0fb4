package repositories

import (
	"strings"
	"time"

	"github.com/minealert/minealert-backend/repositories/clock"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestRepository() MineAlertDbRepository {
	return MineAlertDbRepository{clock: clock.NewMock(testNow)}
}

func escapeSql(str string) string {
	r := strings.NewReplacer("(", "\\(", ")", "\\)", "$", "\\$", "*", "\\*")
	return r.Replace(str)
}
