package main

import (
	"encoding/json"
	"errors"
	"os"

	"padcontrol/internal/events"
	"padcontrol/internal/handlers/business"
	"padcontrol/pkg/config"
	"padcontrol/pkg/solana"
	"padcontrol/schedule"

	logrus "github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	// Initialize RabbitMQ
	config.InitRabbitMQ()
	defer config.RabbitMQ.Close()

	custody, err := solana.NewVaultCustody()
	if err != nil {
		logrus.Fatal("Failed to initialize custody: ", err)
	}
	registry, err := solana.NewMetaplexRegistry()
	if err != nil {
		logrus.Fatal("Failed to initialize registry: ", err)
	}

	publisher, err := config.NewPublisher()
	if err != nil {
		logrus.Fatal("Failed to create publisher: ", err)
	}
	defer publisher.Close()

	engine := business.NewEngine(config.DB, custody, registry, events.NewQueueSink(publisher, events.Queue), solana.NewEd25519Verifier())

	backAuthority := os.Getenv("BACK_AUTHORITY")
	if backAuthority == "" {
		logrus.Fatal("BACK_AUTHORITY is required")
	}

	// Start the round and fill sweeps
	sweeper := schedule.NewSweeper(engine, backAuthority)
	cronRunner, err := schedule.Start(sweeper, publisher)
	if err != nil {
		logrus.Fatal("Failed to start schedules: ", err)
	}
	defer cronRunner.Stop()

	// Create consumer for the fill queue
	msgConsumer, err := config.NewConsumer(schedule.FillQueue)
	if err != nil {
		logrus.Fatal("Failed to create consumer: ", err)
	}
	defer msgConsumer.Close()

	logrus.Info("Pad fill worker started, waiting for messages...")

	// Start consuming messages
	err = msgConsumer.Consume(func(msg []byte) error {
		var request schedule.FillRequest
		if err := json.Unmarshal(msg, &request); err != nil {
			logrus.Errorf("Failed to unmarshal fill request: %v", err)
			return err
		}

		logrus.WithFields(logrus.Fields{
			"kind":            request.Kind,
			"pad_name":        request.PadName,
			"collection_mint": request.CollectionMint,
			"user":            request.User,
			"buy_index":       request.BuyIndex,
		}).Info("Received fill request")

		if err := handleFill(engine, backAuthority, &request); err != nil {
			// The sweep can enqueue a unit again before an earlier fill for it
			// lands, so already-filled requests are expected. Drop them.
			if errors.Is(err, business.ErrInvalidLifecycleState) || errors.Is(err, business.ErrNotFound) {
				logrus.Warnf("Skipping fill request for pad %s: %v", request.PadName, err)
				return nil
			}
			logrus.Errorf("Fill request for pad %s failed: %v", request.PadName, err)
			return err
		}
		return nil
	})
	if err != nil {
		logrus.Fatal("Failed to start consuming: ", err)
	}
}

func handleFill(engine *business.Engine, backAuthority string, request *schedule.FillRequest) error {
	switch request.Kind {
	case schedule.FillKindBuy:
		asset, err := engine.FillBoughtCollectionAsset(&business.FillBoughtCollectionAssetParams{
			PadName:        request.PadName,
			CollectionMint: request.CollectionMint,
			User:           request.User,
			BuyIndex:       request.BuyIndex,
		})
		if err != nil {
			return err
		}
		logrus.Infof("Filled bought asset %s for user %s", asset, request.User)
		return nil
	case schedule.FillKindDistribution:
		asset, err := engine.FillClaimedCollectionAssetDistribution(&business.FillClaimedCollectionAssetDistributionParams{
			PadName:        request.PadName,
			CollectionMint: request.CollectionMint,
			User:           request.User,
		})
		if err != nil {
			return err
		}
		logrus.Infof("Filled distribution asset %s for user %s", asset, request.User)
		return nil
	case schedule.FillKindTreasury:
		asset, err := engine.MintTreasuryAsset(&business.MintTreasuryAssetParams{
			PadName:        request.PadName,
			CollectionMint: request.CollectionMint,
			Caller:         backAuthority,
		})
		if err != nil {
			return err
		}
		logrus.Infof("Minted treasury asset %s", asset)
		return nil
	default:
		logrus.Warnf("Unknown fill kind %q, dropping message", request.Kind)
		return nil
	}
}
