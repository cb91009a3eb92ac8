package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// ContractStore reads contract prices. It implements pricing.ContractStore.
type ContractStore struct {
	Pool *pgxpool.Pool
	Log  zerolog.Logger
}

const activeContractsSQL = `
SELECT id, customer_id, product_id, net_price, effective_from, effective_to, is_active, created_at
FROM contract_prices
WHERE customer_id = $1
  AND product_id = $2
  AND is_active
  AND (effective_from IS NULL OR effective_from <= $3)
  AND (effective_to IS NULL OR effective_to >= $3)
ORDER BY created_at DESC, id DESC`

// ActiveContract returns the contract price valid for the key at the given
// instant, or nil when none exists. At most one record should be active per
// key; if upstream data violates that, the most recently created record
// wins and the condition is logged for administrator attention.
func (s ContractStore) ActiveContract(ctx context.Context, customerID, productID uuid.UUID, at time.Time) (*pricing.ContractPrice, error) {
	if s.Pool == nil {
		return nil, errors.New("contract store not configured")
	}
	rows, err := s.Pool.Query(ctx, activeContractsSQL, customerID, productID, at)
	if err != nil {
		return nil, fmt.Errorf("query contracts: %w", err)
	}
	defer rows.Close()

	var contracts []pricing.ContractPrice
	for rows.Next() {
		var (
			contract   pricing.ContractPrice
			custID     pgtype.UUID
			prodID     pgtype.UUID
			from, to   pgtype.Timestamptz
		)
		if err := rows.Scan(&contract.ID, &custID, &prodID, &contract.NetPrice, &from, &to, &contract.Active, &contract.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contract.CustomerID = uuidValue(custID)
		contract.ProductID = uuidValue(prodID)
		contract.ValidFrom = timePtr(from)
		contract.ValidTo = timePtr(to)
		contracts = append(contracts, contract)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read contracts: %w", err)
	}
	if len(contracts) == 0 {
		return nil, nil
	}
	if len(contracts) > 1 {
		s.Log.Warn().
			Str("customer_id", customerID.String()).
			Str("product_id", productID.String()).
			Int("active_records", len(contracts)).
			Int64("chosen_id", contracts[0].ID).
			Msg("ambiguous contract price, using most recently created")
		if obs.AmbiguousContractTotal != nil {
			obs.AmbiguousContractTotal.Inc()
		}
	}
	return &contracts[0], nil
}
