// 开发环境数据填充工具。
//
//	go run ./cmd/seed -config configs/config.toml seed   # 填充测试数据
//	go run ./cmd/seed -config configs/config.toml clear  # 清空全部数据
//	go run ./cmd/seed -config configs/config.toml reset  # 清空后重新填充
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	adminapp "github.com/donatetrack/donatetrack/internal/admin/application"
	beneficiaryapp "github.com/donatetrack/donatetrack/internal/beneficiary/application"
	beneficiarydomain "github.com/donatetrack/donatetrack/internal/beneficiary/domain"
	beneficiarymysql "github.com/donatetrack/donatetrack/internal/beneficiary/infrastructure/persistence/mysql"
	donationapp "github.com/donatetrack/donatetrack/internal/donation/application"
	donationdomain "github.com/donatetrack/donatetrack/internal/donation/domain"
	donationmsg "github.com/donatetrack/donatetrack/internal/donation/infrastructure/messaging"
	donationmysql "github.com/donatetrack/donatetrack/internal/donation/infrastructure/persistence/mysql"
	frauddomain "github.com/donatetrack/donatetrack/internal/fraud/domain"
	identityapp "github.com/donatetrack/donatetrack/internal/identity/application"
	identitydomain "github.com/donatetrack/donatetrack/internal/identity/domain"
	identitymsg "github.com/donatetrack/donatetrack/internal/identity/infrastructure/messaging"
	identitymysql "github.com/donatetrack/donatetrack/internal/identity/infrastructure/persistence/mysql"
	notificationdomain "github.com/donatetrack/donatetrack/internal/notification/domain"
	"github.com/donatetrack/donatetrack/internal/payment/gateway"
	projectapp "github.com/donatetrack/donatetrack/internal/project/application"
	projectdomain "github.com/donatetrack/donatetrack/internal/project/domain"
	projectmysql "github.com/donatetrack/donatetrack/internal/project/infrastructure/persistence/mysql"
	proofapp "github.com/donatetrack/donatetrack/internal/proof/application"
	proofdomain "github.com/donatetrack/donatetrack/internal/proof/domain"
	proofmsg "github.com/donatetrack/donatetrack/internal/proof/infrastructure/messaging"
	proofmysql "github.com/donatetrack/donatetrack/internal/proof/infrastructure/persistence/mysql"
	"github.com/donatetrack/donatetrack/pkg/config"
	"github.com/donatetrack/donatetrack/pkg/db"
	"github.com/donatetrack/donatetrack/pkg/logger"
	"github.com/donatetrack/donatetrack/pkg/metrics"
	"github.com/donatetrack/donatetrack/pkg/token"
	"github.com/donatetrack/donatetrack/pkg/utils"
)

// tables 按外键依赖倒序排列，clear 时依次清空
var tables = []string{
	"notifications",
	"proof_outbox_messages",
	"donation_outbox_messages",
	"identity_outbox_messages",
	"proof_donations",
	"proofs",
	"aid_records",
	"beneficiaries",
	"donations",
	"project_updates",
	"project_milestones",
	"projects",
	"donor_profiles",
	"ngo_profiles",
	"users",
}

func main() {
	configPath := flag.String("config", "configs/config.toml", "配置文件路径")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "seed"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Environment == "prod" {
		fmt.Println("Refusing to seed a production environment")
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Level: "info", Format: "text", Output: "stdout"}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         false,
		SlowQueryThreshold: 1000,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to initialize database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&identitydomain.User{},
		&identitydomain.DonorProfile{},
		&identitydomain.NGOProfile{},
		&projectdomain.Project{},
		&projectdomain.Milestone{},
		&projectdomain.ProjectUpdate{},
		&donationdomain.Donation{},
		&proofdomain.Proof{},
		&proofdomain.ProofDonation{},
		&beneficiarydomain.Beneficiary{},
		&beneficiarydomain.AidRecord{},
		&notificationdomain.Notification{},
		&identitymsg.OutboxMessage{},
		&donationmsg.OutboxMessage{},
		&proofmsg.OutboxMessage{},
	); err != nil {
		logger.Fatal(ctx, "Failed to migrate database", "error", err)
	}

	switch command {
	case "seed":
		seed(ctx, cfg, database)
	case "clear":
		clear(ctx, database)
	case "reset":
		clear(ctx, database)
		seed(ctx, cfg, database)
	default:
		fmt.Printf("Unknown command: %s (expected seed, clear or reset)\n", command)
		os.Exit(1)
	}
}

// clear 清空全部业务表
func clear(ctx context.Context, database *db.DB) {
	for _, table := range tables {
		if err := database.Exec("DELETE FROM " + table).Error; err != nil {
			logger.Fatal(ctx, "Failed to clear table", "table", table, "error", err)
		}
	}
	logger.Info(ctx, "All tables cleared", "count", len(tables))
}

// seed 走正式的应用服务填充数据，保证领域不变式与聚合统计和真实流量一致
func seed(ctx context.Context, cfg *config.Config, database *db.DB) {
	userRepo := identitymysql.NewUserRepository(database.DB)
	donorRepo := identitymysql.NewDonorProfileRepository(database.DB)
	ngoRepo := identitymysql.NewNGOProfileRepository(database.DB)
	projectRepo := projectmysql.NewProjectRepository(database.DB)
	milestoneRepo := projectmysql.NewMilestoneRepository(database.DB)
	updateRepo := projectmysql.NewUpdateRepository(database.DB)
	donationRepo := donationmysql.NewDonationRepository(database.DB)
	proofRepo := proofmysql.NewProofRepository(database.DB)
	beneficiaryRepo := beneficiarymysql.NewBeneficiaryRepository(database.DB)

	identityPublisher := identitymsg.NewOutboxEventPublisher(database.DB)
	donationPublisher := donationmsg.NewOutboxEventPublisher(database.DB)
	proofPublisher := proofmsg.NewOutboxEventPublisher(database.DB)

	mockGateway := gateway.NewMockGateway(cfg.Payment.KeySecret)
	tokenManager := token.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer,
		time.Duration(cfg.JWT.ExpiresInHours)*time.Hour)
	idgen := utils.NewSnowflakeID(2)
	metricsInstance := metrics.New("donatetrack-seed")

	identityCmd := identityapp.NewIdentityCommandService(userRepo, donorRepo, ngoRepo, tokenManager, idgen, database.DB)
	projectCmd := projectapp.NewProjectCommandService(projectRepo, milestoneRepo, updateRepo, ngoRepo, idgen)
	donationCmd := donationapp.NewDonationCommandService(
		donationRepo, projectRepo, userRepo, donorRepo, ngoRepo,
		donationPublisher, mockGateway, frauddomain.DefaultPolicy(),
		metricsInstance, idgen, database.DB)
	proofSvc := proofapp.NewProofService(proofRepo, projectRepo, proofPublisher, idgen, database.DB)
	beneficiarySvc := beneficiaryapp.NewBeneficiaryService(beneficiaryRepo, projectRepo, idgen)
	adminSvc := adminapp.NewAdminService(ngoRepo, projectRepo, identityPublisher, database.DB)

	// 管理员账户：注册接口不开放 admin 角色，这里直接落库
	adminHash, err := bcrypt.GenerateFromPassword([]byte("Admin@1234"), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal(ctx, "Failed to hash admin password", "error", err)
	}
	admin := identitydomain.NewUser(fmt.Sprintf("USR-%d", idgen.Generate()),
		"admin@donatetrack.org", string(adminHash), "Platform Admin", identitydomain.RoleAdmin)
	admin.IsVerified = true
	if err := userRepo.Save(ctx, admin); err != nil {
		logger.Fatal(ctx, "Failed to create admin user", "error", err)
	}

	// 捐赠人账户
	donors := make([]*identityapp.UserDTO, 0, 3)
	for i, name := range []string{"Asha Kumar", "Rahul Mehta", "Priya Nair"} {
		dto, err := identityCmd.Register(ctx, identityapp.RegisterCommand{
			Email:    fmt.Sprintf("donor%d@example.com", i+1),
			Password: "Donor@1234",
			Name:     name,
			Role:     identitydomain.RoleDonor,
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to register donor", "error", err)
		}
		donors = append(donors, dto)
	}

	// NGO 账户
	ngo, err := identityCmd.Register(ctx, identityapp.RegisterCommand{
		Email:          "contact@helpinghands.org",
		Password:       "Ngo@12345",
		Name:           "Helping Hands Trust",
		Role:           identitydomain.RoleNGO,
		OrgName:        "Helping Hands Trust",
		RegistrationNo: "NGO-DARPAN-2021-044871",
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to register NGO", "error", err)
	}
	if err := adminSvc.VerifyNGO(ctx, ngo.UserID, identitydomain.VerificationVerified, "Documents verified during onboarding"); err != nil {
		logger.Fatal(ctx, "Failed to verify NGO", "error", err)
	}

	// 项目：创建、提交、审核通过
	now := time.Now()
	project, err := projectCmd.Create(ctx, projectapp.CreateProjectCommand{
		NGOID:        ngo.UserID,
		Title:        "School Meals for 500 Children",
		Description:  "Daily mid-day meals for government school students in rural Pune district.",
		Category:     projectdomain.CategoryEducation,
		TargetAmount: decimal.NewFromInt(500000),
		StartDate:    now.AddDate(0, 0, -7),
		EndDate:      now.AddDate(0, 3, 0),
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to create project", "error", err)
	}
	if err := projectCmd.Submit(ctx, project.ProjectID, ngo.UserID); err != nil {
		logger.Fatal(ctx, "Failed to submit project", "error", err)
	}
	if err := adminSvc.ModerateProject(ctx, project.ProjectID, "approve", "Looks good"); err != nil {
		logger.Fatal(ctx, "Failed to approve project", "error", err)
	}

	// 捐赠：走完整的意向、支付确认流程，级联统计随之更新
	amounts := []int64{5000, 12000, 750}
	for i, donor := range donors {
		intent, err := donationCmd.CreateIntent(ctx, donationapp.CreateIntentCommand{
			DonorID:       donor.UserID,
			ProjectID:     project.ProjectID,
			Amount:        decimal.NewFromInt(amounts[i]),
			PaymentMethod: "upi",
			IsAnonymous:   i == 2,
			Message:       "Keep up the good work",
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to create donation intent", "error", err)
		}

		paymentID := fmt.Sprintf("pay_seed_%d", i+1)
		_, err = donationCmd.Confirm(ctx, donationapp.ConfirmCommand{
			TransactionID: intent.Donation.TransactionID,
			DonorID:       donor.UserID,
			PaymentID:     paymentID,
			Signature:     mockGateway.Sign(intent.PaymentIntent.OrderID, paymentID),
		})
		if err != nil {
			logger.Fatal(ctx, "Failed to confirm donation", "error", err)
		}
	}

	// 受助对象与援助记录
	beneficiary, err := beneficiarySvc.Add(ctx, beneficiaryapp.AddBeneficiaryCommand{
		NGOID:     ngo.UserID,
		ProjectID: project.ProjectID,
		Name:      "Zilla Parishad Primary School, Khed",
		Details:   "420 enrolled students, grades 1 to 7",
		Location:  "Pune, Maharashtra",
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to add beneficiary", "error", err)
	}
	if err := beneficiarySvc.AddAid(ctx, beneficiaryapp.AddAidCommand{
		NGOID:         ngo.UserID,
		BeneficiaryID: beneficiary.BeneficiaryID,
		Amount:        decimal.NewFromInt(10000),
		Purpose:       "First month meal supplies",
		DisbursedAt:   now,
	}); err != nil {
		logger.Fatal(ctx, "Failed to add aid record", "error", err)
	}

	// 使用证明，关联前两笔捐赠
	completed, _, err := donationRepo.List(ctx, donationdomain.ListFilter{
		ProjectID: project.ProjectID,
		Status:    donationdomain.StatusCompleted,
	}, 10, 0)
	if err != nil {
		logger.Fatal(ctx, "Failed to list donations", "error", err)
	}
	txIDs := make([]string, 0, 2)
	for i, d := range completed {
		if i >= 2 {
			break
		}
		txIDs = append(txIDs, d.TransactionID)
	}
	if _, err := proofSvc.Upload(ctx, proofapp.UploadCommand{
		NGOID:          ngo.UserID,
		ProjectID:      project.ProjectID,
		Type:           proofdomain.TypeReceipt,
		Title:          "Grocery purchase receipt",
		Description:    "Wholesale grains and vegetables for week 1",
		FileURL:        "https://files.donatetrack.example/proofs/receipt-week1.pdf",
		TransactionIDs: txIDs,
	}); err != nil {
		logger.Fatal(ctx, "Failed to upload proof", "error", err)
	}

	logger.Info(ctx, "Seed data created",
		"admin", admin.Email,
		"donors", len(donors),
		"ngo", ngo.Email,
		"project", project.ProjectID)
}
