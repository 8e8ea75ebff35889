package dashboard

import (
	"context"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
)

// coalesce shares one target listing load among concurrent callers. A caller
// whose context ends stops waiting; the load itself continues for the others.
func (s *Service) coalesce(ctx context.Context, key string, fn func(context.Context) ([]compliance.ReportTarget, error)) ([]compliance.ReportTarget, error) {
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]compliance.ReportTarget), nil
	}
}
