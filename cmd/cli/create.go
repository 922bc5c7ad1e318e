package cli

import (
	"fmt"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"qrlink/cmd"
	"qrlink/internal/config"
	"qrlink/internal/models"
	"qrlink/internal/qrimage"
	"qrlink/internal/repository"
	"qrlink/internal/services"
)

var (
	ownerFlag  string
	kindFlag   string
	targetFlag string
	outFlag    string
)

// CreateCmd creates a code record from the command line.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates a QR code record for an owner.",
	Long: `Creates a static or dynamic code pointing at the given target URL.
Dynamic codes get a redirect token and a QR image of their public URL.

Example:
  qrlink create --owner=alice --kind=dynamic --url="https://example.com" --out=code.png`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{})
		if err != nil {
			logrus.Fatalf("Failed to connect to database: %v", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			logrus.Fatalf("Failed to get underlying SQL database: %v", err)
		}
		defer sqlDB.Close()

		codeRepo := repository.NewCodeRepository(db)
		codeService := services.NewCodeService(codeRepo, qrimage.NewPNGEncoder(), cfg.Server.BaseURL)

		code, png, err := codeService.CreateCode(ownerFlag, kindFlag, targetFlag)
		if err != nil {
			if code == nil {
				logrus.Fatalf("Failed to create code: %v", err)
			}
			// Record exists; only the image failed.
			logrus.Warnf("Code created but QR encoding failed: %v", err)
		}

		fmt.Printf("Code created successfully:\n")
		fmt.Printf("ID: %d\n", code.ID)
		fmt.Printf("Kind: %s\n", code.Kind)
		fmt.Printf("Target: %s\n", code.TargetURL)
		if code.Token != nil {
			fmt.Printf("Redirect URL: %s\n", codeService.RedirectURL(*code.Token))
		}

		if png != nil && outFlag != "" {
			if err := os.WriteFile(outFlag, png, 0o644); err != nil {
				logrus.Fatalf("Failed to write QR image to %s: %v", outFlag, err)
			}
			fmt.Printf("QR image written to %s\n", outFlag)
		}
	},
}

func init() {
	CreateCmd.Flags().StringVar(&ownerFlag, "owner", "", "Owner identity of the code")
	CreateCmd.Flags().StringVar(&kindFlag, "kind", models.KindDynamic, "Code kind: static or dynamic")
	CreateCmd.Flags().StringVar(&targetFlag, "url", "", "The target URL the code points at")
	CreateCmd.Flags().StringVar(&outFlag, "out", "", "File to write the QR PNG to (dynamic codes)")

	CreateCmd.MarkFlagRequired("owner")
	CreateCmd.MarkFlagRequired("url")

	cmd.RootCmd.AddCommand(CreateCmd)
}
