package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/vehicle-permit/internal/notification"
	"github.com/frahmantamala/vehicle-permit/internal/pushgateway"
	"github.com/frahmantamala/vehicle-permit/internal/user"
	userPostgres "github.com/frahmantamala/vehicle-permit/internal/user/postgres"
	"github.com/frahmantamala/vehicle-permit/pkg/logger"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Send a push notification to a user",
	Long:  `Send a single push through the configured adapter, for checking device tokens and push credentials.`,
	Run: func(cmd *cobra.Command, args []string) {
		sendPush()
	},
}

var (
	pushUserID  int64
	pushTitle   string
	pushBody    string
	pushAdapter string
	pushURL     string
	pushTimeout time.Duration
)

func sendPush() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}
	defer db.Close()

	gdb, err := initGorm(db)
	if err != nil {
		log.Fatalf("failed to init gorm: %v", err)
	}

	fcmConfig := pushgateway.FCMConfig{
		PushURL:   getStringFlag(pushURL, config.Notification.PushURL),
		ServerKey: config.Notification.ServerKey,
		Timeout:   config.Notification.Timeout,
	}
	adapter := getStringFlag(pushAdapter, config.Notification.Adapter)

	lg.Info("sending push",
		"user_id", pushUserID,
		"adapter", adapter,
		"push_url", fcmConfig.PushURL)

	service := notification.NewService(user.NewService(userPostgres.NewUserRepository(gdb)),
		pushgateway.NewSender(adapter, fcmConfig, lg), lg)

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	result := service.Notify(ctx, pushUserID, pushTitle, pushBody, nil)
	if !result.Delivered {
		fmt.Println("push not delivered; see log for the reason")
		os.Exit(1)
	}
	fmt.Println("push delivered:", result.MessageID)
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}

func init() {
	pushCmd.Flags().Int64Var(&pushUserID, "user-id", 0, "Recipient user id")
	pushCmd.Flags().StringVar(&pushTitle, "title", "Test notification", "Notification title")
	pushCmd.Flags().StringVar(&pushBody, "body", "Push delivery is working.", "Notification body")
	pushCmd.Flags().StringVar(&pushAdapter, "adapter", "", "fcm or log (overrides config)")
	pushCmd.Flags().StringVar(&pushURL, "push-url", "", "Push endpoint (overrides config)")
	pushCmd.Flags().DurationVar(&pushTimeout, "timeout", 15*time.Second, "Overall timeout")
	_ = pushCmd.MarkFlagRequired("user-id")
}
