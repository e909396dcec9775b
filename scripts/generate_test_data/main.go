package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dinelog/internal/auth"
	"github.com/dinelog/internal/config"
	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/repository"
	"github.com/dinelog/internal/service"
	"go.uber.org/zap"
)

// 测试数据生成器
func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("加载配置失败:", err)
	}

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, nil)
	if err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")
	summary, err := newSeeder(repository.New(gdb, cfg.AppID), cfg.Location()).Run(context.Background())
	if err != nil {
		log.Fatal("生成测试数据失败:", err)
	}
	fmt.Println("测试数据生成完成！")
	fmt.Printf("餐厅: %d 家，评论: %d 条，文章: %d 篇，活动: %d 个\n",
		summary.Restaurants, summary.Reviews, summary.Blogs, summary.Promotions)
}

type seedSummary struct {
	Restaurants int
	Reviews     int
	Blogs       int
	Promotions  int
}

type seeder struct {
	store       *repository.Store
	restaurants *service.RestaurantService
	reviews     *service.ReviewService
	blogs       *service.BlogService
	users       *service.UserService
	promotions  *service.PromotionService
	now         func() time.Time
}

func newSeeder(store *repository.Store, loc *time.Location) *seeder {
	log := zap.NewNop()
	return &seeder{
		store:       store,
		restaurants: service.NewRestaurantService(store, nil, log, loc),
		reviews:     service.NewReviewService(store, nil, log),
		blogs:       service.NewBlogService(store, nil, nil, log),
		users:       service.NewUserService(store, log),
		promotions:  service.NewPromotionService(store, loc),
		now:         time.Now,
	}
}

// Run 在库中没有餐厅时写入演示数据，已有数据则跳过。
func (s *seeder) Run(ctx context.Context) (seedSummary, error) {
	var summary seedSummary
	existing, err := s.restaurants.AdminList(ctx, "", 1, 1)
	if err != nil {
		return summary, err
	}
	if existing.Total > 0 {
		fmt.Println("餐厅已存在，跳过创建")
		return summary, nil
	}

	ids, err := s.seedRestaurants(ctx)
	if err != nil {
		return summary, err
	}
	summary.Restaurants = len(ids)

	if summary.Reviews, err = s.seedReviews(ctx, ids); err != nil {
		return summary, err
	}
	if summary.Blogs, err = s.seedBlogs(ctx); err != nil {
		return summary, err
	}
	if summary.Promotions, err = s.seedPromotions(ctx, ids); err != nil {
		return summary, err
	}
	return summary, nil
}

func openAllWeek(start, end string) []db.BusinessHour {
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	hours := make([]db.BusinessHour, 0, len(days))
	for _, day := range days {
		hours = append(hours, db.BusinessHour{Day: day, IsOpen: true, StartTime: start, EndTime: end})
	}
	return hours
}

func (s *seeder) seedRestaurants(ctx context.Context) ([]string, error) {
	inputs := []service.RestaurantInput{
		{
			Name:             db.LocalizedName{EN: "Yongkang Beef Noodles", ZhTW: "永康牛肉麵"},
			Province:         "Taiwan",
			City:             "Taipei",
			District:         "Da'an",
			Category:         "noodles",
			AvgSpending:      300,
			SeatingCapacity:  "1-40",
			BusinessHours:    openAllWeek("11:00", "21:00"),
			ReservationModes: []string{"walk-in"},
			PaymentMethods:   []string{"cash"},
			Facilities:       []string{"air-conditioning"},
		},
		{
			Name:             db.LocalizedName{EN: "Harbour Hotpot", ZhTW: "港灣火鍋"},
			Province:         "Taiwan",
			City:             "Kaohsiung",
			District:         "Gushan",
			Category:         "hotpot",
			AvgSpending:      850,
			SeatingCapacity:  "1-120",
			BusinessHours:    openAllWeek("17:00", "02:00"),
			ReservationModes: []string{"online", "phone"},
			PaymentMethods:   []string{"cash", "credit-card", "line-pay"},
			Facilities:       []string{"parking", "private-room"},
		},
		{
			Name:             db.LocalizedName{EN: "Morning Soy Milk", ZhTW: "早安豆漿"},
			Province:         "Taiwan",
			City:             "Taipei",
			District:         "Zhongzheng",
			Category:         "breakfast",
			AvgSpending:      120,
			SeatingCapacity:  "1-20",
			BusinessHours:    openAllWeek("05:30", "12:00"),
			ReservationModes: []string{"walk-in"},
			PaymentMethods:   []string{"cash", "easycard"},
		},
		{
			Name:             db.LocalizedName{EN: "Tainan Milkfish House", ZhTW: "台南虱目魚之家"},
			Province:         "Taiwan",
			City:             "Tainan",
			District:         "West Central",
			Category:         "seafood",
			AvgSpending:      250,
			SeatingCapacity:  "1-60",
			BusinessHours:    openAllWeek("06:00", "14:00"),
			ReservationModes: []string{"phone"},
			PaymentMethods:   []string{"cash"},
			Facilities:       []string{"family-friendly"},
		},
	}

	ids := make([]string, 0, len(inputs))
	for _, input := range inputs {
		restaurant, err := s.restaurants.Create(ctx, input)
		if err != nil {
			return nil, err
		}
		ids = append(ids, restaurant.ID)
	}
	fmt.Println("✅ 测试餐厅创建完成")
	return ids, nil
}

func (s *seeder) seedReviews(ctx context.Context, restaurantIDs []string) (int, error) {
	reviewers := []auth.Claims{
		{UserID: "seed-user-mei", Name: "Mei", Email: "mei@example.com"},
		{UserID: "seed-user-jason", Name: "Jason", Email: "jason@example.com"},
	}
	for i := range reviewers {
		if _, err := s.users.EnsureOnSignIn(ctx, &reviewers[i]); err != nil {
			return 0, err
		}
	}

	ratings := []float64{4.5, 3.5, 5, 4}
	count := 0
	for i, restaurantID := range restaurantIDs {
		for j, reviewer := range reviewers {
			rating := ratings[(i+j)%len(ratings)]
			cost := 100 * (i + 1)
			result, err := s.reviews.Submit(ctx, service.ReviewInput{
				RestaurantID:  restaurantID,
				UserID:        reviewer.UserID,
				Username:      reviewer.Name,
				Title:         fmt.Sprintf("Visit #%d", j+1),
				OverallRating: &rating,
				TasteRating:   rating,
				ServiceRating: 4,
				CostPerPerson: &cost,
				Content:       "Seeded review for local development.",
			})
			if err != nil {
				return count, err
			}
			if result.Outcome == service.SubmissionAccepted {
				count++
			}
		}
	}
	fmt.Println("✅ 测试评论创建完成")
	return count, nil
}

func (s *seeder) seedBlogs(ctx context.Context) (int, error) {
	editor := service.BlogAuthor{ID: "seed-editor", Name: "Dinelog Editors"}
	posts := []service.BlogInput{
		{
			Title:   "A first-timer's guide to Taipei night markets",
			Content: "## Where to start\n\nBegin at **Raohe**, then work your way to Shilin.\n\n- pepper buns\n- oyster omelette",
			Tags:    []string{"night-market", "taipei"},
		},
		{
			Title:   "Five beef noodle shops worth the queue",
			Content: "Clear broth or braised? We tried both.\n\n| Shop | Style |\n| --- | --- |\n| Yongkang | braised |",
			Tags:    []string{"noodles", "taipei"},
		},
		{
			Title:   "Breakfast like a local in Tainan",
			Content: "Milkfish congee at six in the morning is the right call.",
			Tags:    []string{"breakfast", "tainan"},
		},
	}

	for _, input := range posts {
		post, err := s.blogs.CreateDraft(ctx, editor, input)
		if err != nil {
			return 0, err
		}
		if _, err := s.blogs.Review(ctx, post.ID, editor, service.BlogDecisionPublish, ""); err != nil {
			return 0, err
		}
	}
	fmt.Println("✅ 测试文章创建完成")
	return len(posts), nil
}

func (s *seeder) seedPromotions(ctx context.Context, restaurantIDs []string) (int, error) {
	if len(restaurantIDs) == 0 {
		return 0, nil
	}
	now := s.now()
	_, err := s.promotions.Create(ctx, service.PromotionInput{
		Title:        "Autumn hotpot week",
		Description:  "Free dessert with every set menu.",
		RestaurantID: restaurantIDs[0],
		StartsAt:     now.AddDate(0, 0, -1).Format(time.RFC3339),
		EndsAt:       now.AddDate(0, 0, 14).Format(time.RFC3339),
	})
	if err != nil {
		return 0, err
	}
	fmt.Println("✅ 测试活动创建完成")
	return 1, nil
}
