package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/dinelog/internal/auth"
	"github.com/dinelog/internal/config"
	"github.com/dinelog/internal/db"
	"github.com/dinelog/internal/repository"
)

func main() {
	username := flag.String("username", "admin", "管理员用户名")
	password := flag.String("password", "", "管理员密码")
	email := flag.String("email", "", "管理员邮箱")
	flag.Parse()

	if *password == "" {
		log.Fatal("请通过 -password 指定密码")
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, nil)
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}
	store := repository.New(gdb, cfg.AppID)

	tokens, err := auth.NewJWTProvider(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL())
	if err != nil {
		log.Fatalf("初始化令牌失败: %v", err)
	}

	created, err := auth.NewCredentialService(store, tokens).EnsureCredential(context.Background(), *username, *password, *email, true)
	if err != nil {
		log.Fatalf("创建管理员失败: %v", err)
	}
	if !created {
		fmt.Println("管理员已存在，无需初始化")
		return
	}
	fmt.Printf("管理员 %s 创建成功 (app: %s)\n", *username, cfg.AppID)
}
