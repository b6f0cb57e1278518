package payment

import (
	"log"

	"rsv/src/models"
	"rsv/src/types"
)

// Registry holds providers in registration order and always picks the
// first one that accepts, so selection is deterministic for a given
// configuration.
type Registry struct {
	providers []Provider
}

func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

func (r *Registry) Register(p Provider) {
	r.providers = append(r.providers, p)
	log.Printf("[Payment] Registered provider: %s\n", p.Name())
}

// Resolve returns the first provider accepting the method for the
// organization, or ErrNoProvider.
func (r *Registry) Resolve(method types.PaymentMethod, org *models.Organization) (Provider, error) {
	for _, p := range r.providers {
		if p.Accept(method, org) {
			return p, nil
		}
	}
	return nil, ErrNoProvider
}

// Pay resolves a provider and runs the charge. A provider error leaves
// the reservation untouched in its prior state; retrying is safe.
func (r *Registry) Pay(spec Spec) (*Result, error) {
	provider, err := r.Resolve(spec.Method, spec.Organization)
	if err != nil {
		return nil, err
	}
	log.Printf("[Payment] Reservation %s goes through %s\n", spec.Reservation.ID, provider.Name())
	return provider.Pay(spec)
}

// Refund finds the provider that would have handled the reservation's
// method and asks it to reverse the charge.
func (r *Registry) Refund(reservation *models.Reservation, org *models.Organization) error {
	if reservation.PaymentMethod == nil {
		return ErrNoProvider
	}
	provider, err := r.Resolve(*reservation.PaymentMethod, org)
	if err != nil {
		return err
	}
	if !provider.SupportsRefund() {
		return &CapabilityError{Provider: provider.Name(), Operation: "refund"}
	}
	return provider.Refund(reservation)
}
