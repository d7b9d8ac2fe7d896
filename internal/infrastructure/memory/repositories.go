package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
)

func newRepos(s session) ports.Repos {
	return ports.Repos{
		Products:  &productRepo{s: s},
		Stock:     &stockRepo{s: s},
		Sales:     &saleRepo{s: s},
		Movements: &movementRepo{s: s},
		Logs:      &activityLogRepo{s: s},
		Reports:   &reportRepo{s: s},
		Users:     &userRepo{s: s},
	}
}

func page[T any](xs []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(xs) {
			return xs[:0]
		}
		xs = xs[offset:]
	}
	if limit > 0 && limit < len(xs) {
		xs = xs[:limit]
	}
	return xs
}

// inRange límites inclusivos; nil no filtra.
func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func fkViolation(what string) error {
	return fmt.Errorf("%s: %w", what, domain.ErrConflict)
}

// ---------- products ----------

type productRepo struct{ s session }

var _ repository.ProductRepository = (*productRepo)(nil)

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	row := *p
	return r.s.write(func(d *data) error {
		if _, ok := d.products[row.ID]; ok {
			return fmt.Errorf("producto %s: %w", row.ID, domain.ErrDuplicate)
		}
		if _, ok := d.users[row.UserID]; !ok {
			return fkViolation("producto sin usuario dueño")
		}
		for _, other := range d.products {
			if other.Code == row.Code {
				return fmt.Errorf("código %s: %w", row.Code, domain.ErrDuplicate)
			}
		}
		d.products[row.ID] = row
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.read(func(d *data) error {
		if p, ok := d.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *productRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.read(func(d *data) error {
		for _, p := range d.products {
			if p.Code == code {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *productRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var rows []entity.Product
	err := r.s.read(func(d *data) error {
		for _, p := range d.products {
			if f.UserID != "" && p.UserID != f.UserID {
				continue
			}
			if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
				continue
			}
			if f.MaxStock != nil && p.Stock > *f.MaxStock {
				continue
			}
			if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
				continue
			}
			if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
				continue
			}
			rows = append(rows, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})
	rows = page(rows, f.Limit, f.Offset)
	out := make([]*entity.Product, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	row := *p
	return r.s.write(func(d *data) error {
		cur, ok := d.products[row.ID]
		if !ok {
			return fmt.Errorf("producto %s: %w", row.ID, domain.ErrNotFound)
		}
		for id, other := range d.products {
			if id != row.ID && other.Code == row.Code {
				return fmt.Errorf("código %s: %w", row.Code, domain.ErrDuplicate)
			}
		}
		// El stock solo cambia por StockRepository.
		row.Stock = cur.Stock
		row.UserID = cur.UserID
		row.CreatedAt = cur.CreatedAt
		d.products[row.ID] = row
		return nil
	})
}

func (r *productRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.products[id]; !ok {
			return fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
		}
		if productReferenced(d, id) {
			return fkViolation("producto con historial")
		}
		delete(d.products, id)
		return nil
	})
}

func (r *productRepo) ListIDsByUser(_ context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.s.read(func(d *data) error {
		for id, p := range d.products {
			if p.UserID == userID {
				ids = append(ids, id)
			}
		}
		return nil
	})
	sort.Strings(ids)
	return ids, err
}

func (r *productRepo) DeleteByUser(_ context.Context, userID string) error {
	return r.s.write(func(d *data) error {
		for id, p := range d.products {
			if p.UserID != userID {
				continue
			}
			if productReferenced(d, id) {
				return fkViolation("producto con historial")
			}
			delete(d.products, id)
		}
		return nil
	})
}

func (r *productRepo) LastCodeWithPrefix(_ context.Context, prefix string) (string, error) {
	last := ""
	err := r.s.read(func(d *data) error {
		for _, p := range d.products {
			if strings.HasPrefix(p.Code, prefix) && p.Code > last {
				last = p.Code
			}
		}
		return nil
	})
	return last, err
}

func (r *productRepo) HasHistory(_ context.Context, productID string) (bool, error) {
	var has bool
	err := r.s.read(func(d *data) error {
		has = productReferenced(d, productID)
		return nil
	})
	return has, err
}

func productReferenced(d *data, productID string) bool {
	for _, it := range d.items {
		if it.ProductID == productID {
			return true
		}
	}
	for _, m := range d.movements {
		if m.ProductID == productID {
			return true
		}
	}
	return false
}

// ---------- stock ----------

type stockRepo struct{ s session }

var _ repository.StockRepository = (*stockRepo)(nil)

func productLockKey(id string) string { return "product:" + id }

func (r *stockRepo) LockForUpdate(ctx context.Context, productID string) (*entity.Product, error) {
	if err := r.s.lock(ctx, productLockKey(productID)); err != nil {
		return nil, err
	}
	var out *entity.Product
	err := r.s.read(func(d *data) error {
		if p, ok := d.products[productID]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *stockRepo) SetStock(_ context.Context, productID string, stock int) error {
	return r.s.write(func(d *data) error {
		p, ok := d.products[productID]
		if !ok {
			return fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
		}
		if stock < 0 {
			return fmt.Errorf("stock negativo para %s: %w", productID, domain.ErrConflict)
		}
		p.Stock = stock
		d.products[productID] = p
		return nil
	})
}

func (r *stockRepo) GetStock(_ context.Context, productID string) (int, error) {
	stock := 0
	err := r.s.read(func(d *data) error {
		p, ok := d.products[productID]
		if !ok {
			return fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
		}
		stock = p.Stock
		return nil
	})
	return stock, err
}

// ---------- sales ----------

type saleRepo struct{ s session }

var _ repository.SaleRepository = (*saleRepo)(nil)

func (r *saleRepo) Create(_ context.Context, s *entity.Sale) error {
	row := *s
	row.Items = nil
	if row.State == nil {
		row.State = entity.ActiveSale{}
	}
	return r.s.write(func(d *data) error {
		if _, ok := d.sales[row.ID]; ok {
			return fmt.Errorf("venta %s: %w", row.ID, domain.ErrDuplicate)
		}
		if _, ok := d.users[row.UserID]; !ok {
			return fkViolation("venta sin usuario")
		}
		d.sales[row.ID] = row
		return nil
	})
}

func (r *saleRepo) CreateItem(_ context.Context, it *entity.SaleItem) error {
	row := *it
	return r.s.write(func(d *data) error {
		if _, ok := d.sales[row.SaleID]; !ok {
			return fkViolation("item sin venta")
		}
		if _, ok := d.products[row.ProductID]; !ok {
			return fkViolation("item sin producto")
		}
		d.items = append(d.items, row)
		return nil
	})
}

func saleWithItems(d *data, s entity.Sale) *entity.Sale {
	out := s
	out.Items = nil
	for _, it := range d.items {
		if it.SaleID == s.ID {
			it := it
			out.Items = append(out.Items, &it)
		}
	}
	return &out
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.s.read(func(d *data) error {
		if s, ok := d.sales[id]; ok {
			out = saleWithItems(d, s)
		}
		return nil
	})
	return out, err
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	if err := r.s.lock(ctx, "sale:"+id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *saleRepo) MarkCancelled(_ context.Context, id string, at time.Time, by string) error {
	return r.s.write(func(d *data) error {
		s, ok := d.sales[id]
		if !ok {
			return fmt.Errorf("venta %s: %w", id, domain.ErrNotFound)
		}
		if c, done := s.State.(entity.CancelledSale); done {
			return &domain.AlreadyCancelledError{SaleID: id, CancelledAt: c.At}
		}
		s.State = entity.CancelledSale{At: at, By: by}
		d.sales[id] = s
		return nil
	})
}

func (r *saleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.s.read(func(d *data) error {
		for _, s := range d.sales {
			if f.UserID != "" && s.UserID != f.UserID {
				continue
			}
			if !inRange(s.Date, f.From, f.To) {
				continue
			}
			if !f.IncludeCancelled {
				if _, c := s.State.(entity.CancelledSale); c {
					continue
				}
			}
			out = append(out, saleWithItems(d, s))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *saleRepo) DeleteByUser(_ context.Context, userID string) error {
	return r.s.write(func(d *data) error {
		gone := make(map[string]struct{})
		for id, s := range d.sales {
			if s.UserID == userID {
				gone[id] = struct{}{}
				delete(d.sales, id)
			}
		}
		items := d.items[:0:0]
		for _, it := range d.items {
			if _, ok := gone[it.SaleID]; !ok {
				items = append(items, it)
			}
		}
		d.items = items
		for i := range d.movements {
			if _, ok := gone[d.movements[i].SaleID]; ok {
				d.movements[i].SaleID = ""
			}
		}
		return nil
	})
}

func (r *saleRepo) ClearCancelledBy(_ context.Context, userID string) error {
	return r.s.write(func(d *data) error {
		for id, s := range d.sales {
			if c, ok := s.State.(entity.CancelledSale); ok && c.By == userID {
				c.By = ""
				s.State = c
				d.sales[id] = s
			}
		}
		return nil
	})
}

func (r *saleRepo) ProductsSoldToOthers(_ context.Context, ownerID string) (bool, error) {
	found := false
	err := r.s.read(func(d *data) error {
		for _, it := range d.items {
			p, ok := d.products[it.ProductID]
			if !ok || p.UserID != ownerID {
				continue
			}
			if s, ok := d.sales[it.SaleID]; ok && s.UserID != ownerID {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

// ---------- movements ----------

type movementRepo struct{ s session }

var _ repository.InventoryMovementRepository = (*movementRepo)(nil)

func (r *movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	row := *m
	return r.s.write(func(d *data) error {
		if _, ok := d.products[row.ProductID]; !ok {
			return fkViolation("movimiento sin producto")
		}
		if row.SaleID != "" {
			if _, ok := d.sales[row.SaleID]; !ok {
				return fkViolation("movimiento con venta inexistente")
			}
		}
		d.movements = append(d.movements, row)
		return nil
	})
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	var rows []entity.InventoryMovement
	err := r.s.read(func(d *data) error {
		// Más reciente primero; a igual fecha, el último insertado primero.
		for i := len(d.movements) - 1; i >= 0; i-- {
			m := d.movements[i]
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if !inRange(m.Date, f.From, f.To) {
				continue
			}
			rows = append(rows, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })
	rows = page(rows, f.Limit, f.Offset)
	out := make([]*entity.InventoryMovement, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *movementRepo) DeleteByProducts(_ context.Context, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	ids := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		ids[id] = struct{}{}
	}
	return r.s.write(func(d *data) error {
		kept := d.movements[:0:0]
		for _, m := range d.movements {
			if _, ok := ids[m.ProductID]; !ok {
				kept = append(kept, m)
			}
		}
		d.movements = kept
		return nil
	})
}

// ---------- activity logs ----------

type activityLogRepo struct{ s session }

var _ repository.ActivityLogRepository = (*activityLogRepo)(nil)

func (r *activityLogRepo) Create(_ context.Context, l *entity.ActivityLog) error {
	row := *l
	return r.s.write(func(d *data) error {
		if _, ok := d.users[row.UserID]; !ok {
			return fkViolation("auditoría sin usuario")
		}
		d.logs = append(d.logs, row)
		return nil
	})
}

func (r *activityLogRepo) List(_ context.Context, f repository.ActivityLogFilter) ([]*entity.ActivityLog, error) {
	var rows []entity.ActivityLog
	err := r.s.read(func(d *data) error {
		for i := len(d.logs) - 1; i >= 0; i-- {
			l := d.logs[i]
			if f.UserID != "" && l.UserID != f.UserID {
				continue
			}
			if f.Action != "" && l.Action != f.Action {
				continue
			}
			if f.EntityType != "" && l.EntityType != f.EntityType {
				continue
			}
			if f.EntityID != "" && l.EntityID != f.EntityID {
				continue
			}
			if !inRange(l.CreatedAt, f.From, f.To) {
				continue
			}
			rows = append(rows, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	rows = page(rows, f.Limit, f.Offset)
	out := make([]*entity.ActivityLog, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *activityLogRepo) DeleteByUser(_ context.Context, userID string) error {
	return r.s.write(func(d *data) error {
		kept := d.logs[:0:0]
		for _, l := range d.logs {
			if l.UserID != userID {
				kept = append(kept, l)
			}
		}
		d.logs = kept
		return nil
	})
}

// ---------- reports ----------

type reportRepo struct{ s session }

var _ repository.ReportRepository = (*reportRepo)(nil)

func (r *reportRepo) Create(_ context.Context, rep *entity.Report) error {
	row := *rep
	return r.s.write(func(d *data) error {
		if _, ok := d.users[row.UserID]; !ok {
			return fkViolation("reporte sin usuario")
		}
		d.reports = append(d.reports, row)
		return nil
	})
}

func (r *reportRepo) GetByID(_ context.Context, id string) (*entity.Report, error) {
	var out *entity.Report
	err := r.s.read(func(d *data) error {
		for _, rep := range d.reports {
			if rep.ID == id {
				rep := rep
				out = &rep
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *reportRepo) List(_ context.Context, f repository.ReportFilter) ([]*entity.Report, error) {
	var rows []entity.Report
	err := r.s.read(func(d *data) error {
		for i := len(d.reports) - 1; i >= 0; i-- {
			rep := d.reports[i]
			if f.UserID != "" && rep.UserID != f.UserID {
				continue
			}
			if f.Type != "" && rep.Type != f.Type {
				continue
			}
			rows = append(rows, rep)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].GeneratedAt.After(rows[j].GeneratedAt) })
	rows = page(rows, f.Limit, f.Offset)
	out := make([]*entity.Report, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (r *reportRepo) DeleteByUser(_ context.Context, userID string) error {
	return r.s.write(func(d *data) error {
		kept := d.reports[:0:0]
		for _, rep := range d.reports {
			if rep.UserID != userID {
				kept = append(kept, rep)
			}
		}
		d.reports = kept
		return nil
	})
}

// ---------- users ----------

type userRepo struct{ s session }

var _ repository.UserRepository = (*userRepo)(nil)

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	row := *u
	return r.s.write(func(d *data) error {
		if _, ok := d.users[row.ID]; ok {
			return fmt.Errorf("usuario %s: %w", row.ID, domain.ErrDuplicate)
		}
		for _, other := range d.users {
			if strings.EqualFold(other.Username, row.Username) {
				return fmt.Errorf("username %s: %w", row.Username, domain.ErrDuplicate)
			}
		}
		if row.ManagerID != "" {
			if _, ok := d.users[row.ManagerID]; !ok {
				return fkViolation("jefe inexistente")
			}
		}
		d.users[row.ID] = row
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.s.read(func(d *data) error {
		if u, ok := d.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var out *entity.User
	err := r.s.read(func(d *data) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Username, username) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.users[id]; !ok {
			return fmt.Errorf("usuario %s: %w", id, domain.ErrUserNotFound)
		}
		for _, p := range d.products {
			if p.UserID == id {
				return fkViolation("usuario con productos")
			}
		}
		for _, s := range d.sales {
			if s.UserID == id {
				return fkViolation("usuario con ventas")
			}
		}
		for _, l := range d.logs {
			if l.UserID == id {
				return fkViolation("usuario con auditoría")
			}
		}
		for _, rep := range d.reports {
			if rep.UserID == id {
				return fkViolation("usuario con reportes")
			}
		}
		for _, u := range d.users {
			if u.ManagerID == id {
				return fkViolation("usuario con empleados a cargo")
			}
		}
		for i := range d.movements {
			if d.movements[i].CreatedBy == id {
				d.movements[i].CreatedBy = ""
			}
		}
		delete(d.users, id)
		return nil
	})
}

func (r *userRepo) ClearManager(_ context.Context, managerID string) error {
	return r.s.write(func(d *data) error {
		for id, u := range d.users {
			if u.ManagerID == managerID {
				u.ManagerID = ""
				d.users[id] = u
			}
		}
		return nil
	})
}
