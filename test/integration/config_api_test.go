package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ProgramConfig struct {
	ID                    uint   `json:"id"`
	SigningAuthority      string `json:"signing_authority"`
	BackAuthority         string `json:"back_authority"`
	ProgramStatus         string `json:"program_status"`
	FeeBasePoint          uint16 `json:"fee_base_point"`
	RoundLimit            uint16 `json:"round_limit"`
	DistributionBasePoint uint16 `json:"distribution_base_point"`
	LockBasePoint         uint16 `json:"lock_base_point"`
	LockDuration          int64  `json:"lock_duration"`
}

func TestProgramConfigAPI(t *testing.T) {
	request := map[string]interface{}{
		"caller":                  "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		"back_authority":          "4fYNw3dojWmQ4dXtSGE9epjRGy9pFSx62YypT7avPYvA",
		"fee_base_point":          100,
		"fee_receiver":            "4fYNw3dojWmQ4dXtSGE9epjRGy9pFSx62YypT7avPYvA",
		"round_limit":             20,
		"distribution_base_point": 3000,
		"lock_base_point":         7000,
		"lock_duration":           86400,
		"is_fee_required":         true,
	}

	// Test Case 1: Create Program Config
	t.Run("Create Program Config", func(t *testing.T) {
		payload, err := json.Marshal(request)
		require.NoError(t, err)

		resp, err := http.Post(BaseURL+"/config", "application/json", bytes.NewBuffer(payload))
		require.NoError(t, err)
		defer resp.Body.Close()

		// 409 when a previous run already initialized it.
		if resp.StatusCode == http.StatusConflict {
			t.Log("config already initialized, skipping create assertions")
			return
		}
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var config ProgramConfig
		err = json.NewDecoder(resp.Body).Decode(&config)
		require.NoError(t, err)
		assert.NotZero(t, config.ID)
		assert.Equal(t, "normal", config.ProgramStatus)
	})

	// Test Case 2: Get Program Config
	t.Run("Get Program Config", func(t *testing.T) {
		resp, err := http.Get(BaseURL + "/config")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var config ProgramConfig
		err = json.NewDecoder(resp.Body).Decode(&config)
		require.NoError(t, err)
		assert.Equal(t, uint16(20), config.RoundLimit)
		assert.Equal(t, uint16(7000), config.LockBasePoint)
	})

	// Test Case 3: Update Rejected For Non Authority
	t.Run("Update Rejected For Non Authority", func(t *testing.T) {
		bad := map[string]interface{}{}
		for k, v := range request {
			bad[k] = v
		}
		bad["caller"] = "11111111111111111111111111111111"

		payload, err := json.Marshal(bad)
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodPut, BaseURL+"/config", bytes.NewBuffer(payload))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
