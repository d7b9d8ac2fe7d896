// Package memory implementa el almacén del ledger en memoria con transacciones,
// bloqueos por fila con espera acotada y lecturas de lo último confirmado.
// Lo usan los tests y STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

const defaultLockTimeout = 2 * time.Second

// data estado confirmado. Las entidades se guardan por valor; nunca se expone un puntero interno.
type data struct {
	users     map[string]entity.User
	products  map[string]entity.Product
	sales     map[string]entity.Sale // sin Items
	items     []entity.SaleItem
	movements []entity.InventoryMovement
	logs      []entity.ActivityLog
	reports   []entity.Report
}

func newData() *data {
	return &data{
		users:    make(map[string]entity.User),
		products: make(map[string]entity.Product),
		sales:    make(map[string]entity.Sale),
	}
}

func (d *data) clone() *data {
	c := &data{
		users:     make(map[string]entity.User, len(d.users)),
		products:  make(map[string]entity.Product, len(d.products)),
		sales:     make(map[string]entity.Sale, len(d.sales)),
		items:     append([]entity.SaleItem(nil), d.items...),
		movements: append([]entity.InventoryMovement(nil), d.movements...),
		logs:      append([]entity.ActivityLog(nil), d.logs...),
		reports:   append([]entity.Report(nil), d.reports...),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.sales {
		c.sales[k] = v
	}
	return c
}

// op escritura diferida; se aplica sobre la vista de la tx y otra vez, en orden, al confirmar.
type op func(*data) error

// Store almacén en memoria. Seguro para uso concurrente.
type Store struct {
	mu          sync.RWMutex
	d           *data
	locks       *lockTable
	lockTimeout time.Duration
}

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout espera máxima por un bloqueo de fila antes de devolver ContentionError.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// NewStore crea un almacén vacío.
func NewStore(opts ...Option) *Store {
	s := &Store{
		d:           newData(),
		locks:       newLockTable(),
		lockTimeout: defaultLockTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Repos devuelve repositorios en modo autocommit: cada escritura se confirma sola.
func (s *Store) Repos() ports.Repos {
	return newRepos(&autoSession{s: s})
}

// Analytics devuelve el repositorio de consultas de solo lectura.
func (s *Store) Analytics() *AnalyticsRepository {
	return &AnalyticsRepository{s: s}
}

// read ejecuta fn sobre el estado confirmado.
func (s *Store) read(fn func(*data) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.d)
}

// apply aplica ops atómicamente: o todas o ninguna.
func (s *Store) apply(ops []op) error {
	if len(ops) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.d.clone()
	for _, o := range ops {
		if err := o(next); err != nil {
			return err
		}
	}
	s.d = next
	return nil
}

// session unidad de trabajo sobre la que operan los repositorios.
type session interface {
	read(fn func(*data) error) error
	write(o op) error
	lock(ctx context.Context, key string) error
}

// autoSession sin transacción: lecturas de lo confirmado, escrituras inmediatas.
type autoSession struct {
	s *Store
}

func (a *autoSession) read(fn func(*data) error) error { return a.s.read(fn) }

func (a *autoSession) write(o op) error { return a.s.apply([]op{o}) }

// Fuera de una tx el bloqueo dura lo que la sentencia; no hay nada que retener.
func (a *autoSession) lock(context.Context, string) error { return nil }

// txSession transacción en curso. Lee lo último confirmado más sus propias escrituras
// (read committed) y retiene los bloqueos hasta Commit o Rollback.
type txSession struct {
	s    *Store
	ops  []op
	held map[string]struct{}
	done bool
}

func (t *txSession) view() (*data, error) {
	t.s.mu.RLock()
	v := t.s.d.clone()
	t.s.mu.RUnlock()
	for _, o := range t.ops {
		if err := o(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (t *txSession) read(fn func(*data) error) error {
	if len(t.ops) == 0 {
		return t.s.read(fn)
	}
	v, err := t.view()
	if err != nil {
		return err
	}
	return fn(v)
}

// write valida la operación sobre la vista actual antes de encolarla, para que
// los errores de unicidad o de referencia aparezcan en la sentencia y no al confirmar.
func (t *txSession) write(o op) error {
	v, err := t.view()
	if err != nil {
		return err
	}
	if err := o(v); err != nil {
		return err
	}
	t.ops = append(t.ops, o)
	return nil
}

func (t *txSession) lock(ctx context.Context, key string) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	if err := t.s.locks.acquire(ctx, key, t.s.lockTimeout); err != nil {
		return err
	}
	t.held[key] = struct{}{}
	return nil
}

func (t *txSession) commit() error {
	defer t.release()
	return t.s.apply(t.ops)
}

func (t *txSession) rollback() {
	t.release()
}

func (t *txSession) release() {
	if t.done {
		return
	}
	t.done = true
	for key := range t.held {
		t.s.locks.release(key)
	}
	t.held = nil
	t.ops = nil
}
