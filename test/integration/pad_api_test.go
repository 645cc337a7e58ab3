package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Pad struct {
	ID              uint   `json:"id"`
	PadName         string `json:"pad_name"`
	Mint            string `json:"mint"`
	Status          string `json:"status"`
	CurrentPrice    uint64 `json:"current_price"`
	CurrentRound    uint16 `json:"current_round"`
	TotalSupply     uint64 `json:"total_supply"`
	PaymentReceiver string `json:"payment_receiver"`
}

type PadRound struct {
	ID     uint   `json:"id"`
	Round  uint16 `json:"round"`
	Status string `json:"status"`
	Price  uint64 `json:"price"`
}

func TestPadAPI(t *testing.T) {
	// Unique per run so reruns against the same database do not collide.
	padName := fmt.Sprintf("it-pad-%d", time.Now().Unix())
	mint := "So11111111111111111111111111111111111111112"

	request := map[string]interface{}{
		"pad_name":         padName,
		"creator":          "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		"mint":             mint,
		"payment_mint":     "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"payment_receiver": "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		"p0":               100_000_000_000,
		"ptmax":            10_000_000_000,
		"tmax":             10,
		"omega":            1,
		"alpha":            1,
		"time_shift_max":   3,
		"round_duration":   3600,
		"supply":           1_000_000_000_000,
		"decay_model":      "linear",
	}

	// Test Case 1: Create Pad
	t.Run("Create Pad", func(t *testing.T) {
		payload, err := json.Marshal(request)
		require.NoError(t, err)

		resp, err := http.Post(BaseURL+"/pad", "application/json", bytes.NewBuffer(payload))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var pad Pad
		err = json.NewDecoder(resp.Body).Decode(&pad)
		require.NoError(t, err)
		assert.NotZero(t, pad.ID)
		assert.Equal(t, "started", pad.Status)
		assert.Equal(t, uint16(1), pad.CurrentRound)
		assert.Equal(t, uint64(100_000_000_000), pad.CurrentPrice)
	})

	// Test Case 2: Get Pad
	t.Run("Get Pad", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/pad/%s/%s", BaseURL, padName, mint))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var pad Pad
		err = json.NewDecoder(resp.Body).Decode(&pad)
		require.NoError(t, err)
		assert.Equal(t, padName, pad.PadName)
		assert.Equal(t, uint64(1_000_000_000_000), pad.TotalSupply)
	})

	// Test Case 3: First Round Is Open
	t.Run("List Pad Rounds", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/pad/%s/%s/rounds", BaseURL, padName, mint))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var rounds []PadRound
		err = json.NewDecoder(resp.Body).Decode(&rounds)
		require.NoError(t, err)
		require.Len(t, rounds, 1)
		assert.Equal(t, uint16(1), rounds[0].Round)
		assert.Equal(t, "started", rounds[0].Status)
	})

	// Test Case 4: Update Payment Receiver
	t.Run("Update Pad", func(t *testing.T) {
		update := map[string]interface{}{
			"caller":           request["creator"],
			"payment_receiver": "4fYNw3dojWmQ4dXtSGE9epjRGy9pFSx62YypT7avPYvA",
		}
		payload, err := json.Marshal(update)
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodPut, fmt.Sprintf("%s/pad/%s/%s", BaseURL, padName, mint), bytes.NewBuffer(payload))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var pad Pad
		err = json.NewDecoder(resp.Body).Decode(&pad)
		require.NoError(t, err)
		assert.Equal(t, "4fYNw3dojWmQ4dXtSGE9epjRGy9pFSx62YypT7avPYvA", pad.PaymentReceiver)
	})

	// Test Case 5: Unknown Pad
	t.Run("Get Unknown Pad", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/pad/no-such-pad/%s", BaseURL, mint))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
