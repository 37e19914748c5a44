package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Facture-2/Facture5-V2/internal/domain/entity"
	"github.com/Facture-2/Facture5-V2/internal/domain/subscription"
)

func TestBuildMergeQuery_ColumnasOrdenadas(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	query, args := buildMergeQuery("uid-1", subscription.DowngradeFields(now))

	require.NotEmpty(t, query)
	assert.Equal(t, "uid-1", args[len(args)-1])
	assert.Contains(t, query, "subscription = $")
	assert.Contains(t, query, "expiry_date = $")
	assert.Contains(t, query, fmt.Sprintf("WHERE id = $%d", len(args)))
}

func TestBuildMergeQuery_CampoIF(t *testing.T) {
	query, args := buildMergeQuery("uid-1", entity.CompanyFields{entity.FieldIF: "IF-9"})

	assert.Equal(t, "UPDATE companies SET if_number = $1 WHERE id = $2", query)
	assert.Equal(t, []any{"IF-9", "uid-1"}, args)
}

func TestBuildMergeQuery_IgnoraDesconocidos(t *testing.T) {
	query, args := buildMergeQuery("uid-1", entity.CompanyFields{"color": "azul"})
	assert.Empty(t, query)
	assert.Nil(t, args)
}

func TestBuildMergeQuery_FechaCeroEsNull(t *testing.T) {
	_, args := buildMergeQuery("uid-1", entity.CompanyFields{entity.FieldExpiryDate: time.Time{}})
	require.Len(t, args, 2)
	assert.Nil(t, args[0])
}
