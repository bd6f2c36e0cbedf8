package services

import (
	"context"
	"log"
	"time"

	"canteen_preorder/internal/models"
	"canteen_preorder/internal/repository"
)

// OrderCompleter is the slice of the lifecycle engine the scheduler needs.
type OrderCompleter interface {
	CompleteIfReady(ctx context.Context, orderID uint) error
}

// AutoCompleteService moves orders from ready to completed after a fixed
// delay. Timers live in-process only; RescheduleReadyOrders rebuilds them
// from the store on startup so a restart does not drop pending completions.
type AutoCompleteService struct {
	completer OrderCompleter
	orderRepo repository.OrderRepository
	delay     time.Duration
}

func NewAutoCompleteService(orderRepo repository.OrderRepository, delay time.Duration) *AutoCompleteService {
	return &AutoCompleteService{orderRepo: orderRepo, delay: delay}
}

// SetCompleter wires the lifecycle engine in after construction; the engine
// takes the scheduler at construction time, so one side has to be late-bound.
func (s *AutoCompleteService) SetCompleter(completer OrderCompleter) {
	s.completer = completer
}

// Schedule arms a one-shot timer for the order. The fire-time guard in
// CompleteIfReady makes double scheduling harmless, so timers are never
// cancelled explicitly.
func (s *AutoCompleteService) Schedule(orderID uint) {
	s.scheduleAfter(orderID, s.delay)
}

func (s *AutoCompleteService) scheduleAfter(orderID uint, delay time.Duration) {
	time.AfterFunc(delay, func() {
		if s.completer == nil {
			return
		}
		if err := s.completer.CompleteIfReady(context.Background(), orderID); err != nil {
			log.Printf("Auto-complete for order %d failed: %v", orderID, err)
		}
	})
}

// RescheduleReadyOrders re-derives pending timers from orders still in
// ready status. Orders whose window already elapsed fire immediately.
func (s *AutoCompleteService) RescheduleReadyOrders() error {
	orders, err := s.orderRepo.GetByStatus(string(models.OrderReady))
	if err != nil {
		return err
	}

	for _, order := range orders {
		readySince := order.UpdatedAt
		if order.ReadyAt != nil {
			readySince = *order.ReadyAt
		}
		remaining := s.delay - time.Since(readySince)
		if remaining < 0 {
			remaining = 0
		}
		s.scheduleAfter(order.ID, remaining)
	}

	if len(orders) > 0 {
		log.Printf("Rescheduled auto-completion for %d ready orders", len(orders))
	}
	return nil
}
