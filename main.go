package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"

	"task-manager/backend/db"
	"task-manager/backend/handlers"
	"task-manager/backend/logging"
	"task-manager/backend/middleware"
	"task-manager/backend/services"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting task manager backend...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Infof("Event ID: ENV_LOAD_SKIPPED, Description: No .env file loaded: %v", err)
	}

	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017")
	mongoDBName := getEnv("MONGO_DB_NAME", "taskmanager")
	uploadDir := getEnv("UPLOAD_DIR", "uploads")
	serverPort := getEnv("SERVER_PORT", "5000")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := db.Connect(ctx, mongoURI)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: %v", err)
	}
	defer client.Disconnect(context.Background())
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	database := client.Database(mongoDBName)
	usersCollection := database.Collection("users")
	sessionsCollection := database.Collection("sessions")
	projectsCollection := database.Collection("projects")
	tasksCollection := database.Collection("tasks")

	if err := db.EnsureUserEmailIndex(ctx, usersCollection); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	fileService, err := services.NewFileService(uploadDir)
	if err != nil {
		logging.Logger.Fatalf("Event ID: UPLOAD_DIR_FAILED, Description: %v", err)
	}

	sessionService := services.NewSessionService(sessionsCollection)
	userService := services.NewUserService(usersCollection, sessionService)
	projectService := services.NewProjectService(projectsCollection, tasksCollection)
	taskService := services.NewTaskService(tasksCollection, projectsCollection)

	storeBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "MongoHealthCB",
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService, fileService)
	taskHandler := handlers.NewTaskHandler(taskService)
	fileHandler := handlers.NewFileHandler(fileService)
	healthHandler := handlers.NewHealthHandler(client, storeBreaker)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/user", userHandler.GetUser).Methods(http.MethodGet)
	api.HandleFunc("/user/projects", projectHandler.ListProjectsByUser).Methods(http.MethodGet)

	api.HandleFunc("/projects", projectHandler.ListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects", projectHandler.CreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}", projectHandler.GetProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}", projectHandler.UpdateProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id}", projectHandler.DeleteProject).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{projectId}/tasks", taskHandler.ListByProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{projectId}/tasks", taskHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/projects/{projectId}/files/{filename}", fileHandler.Download).Methods(http.MethodGet)

	api.HandleFunc("/tasks", taskHandler.ListForUser).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskId}", taskHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskId}", taskHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{taskId}/favorite", taskHandler.ToggleFavorite).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{taskId}/comments", taskHandler.AddComment).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskId}/comments", taskHandler.GetComments).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskId}/comment", taskHandler.AddCommentAtomic).Methods(http.MethodPut)

	api.HandleFunc("/download/{filename}", fileHandler.Download).Methods(http.MethodGet)
	api.PathPrefix("/uploads/").Handler(http.StripPrefix("/api/uploads/", http.FileServer(http.Dir(fileService.Dir()))))

	api.Handle("/protected-route", middleware.SessionTimeout(sessionService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": "You have access"}`))
	}))).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler.Check).Methods(http.MethodGet)

	corsRouter := enableCORS(r)

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
