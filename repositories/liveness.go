package repositories

import "context"

func (repo MineAlertDbRepository) Liveness(ctx context.Context, exec Executor) error {
	row := exec.QueryRow(ctx, "SELECT 1")
	var result int
	return row.Scan(&result)
}
