package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lingodesk/placement-backend/internal/config"
	"github.com/lingodesk/placement-backend/internal/database"
	"github.com/lingodesk/placement-backend/internal/logger"
	"github.com/lingodesk/placement-backend/internal/model"
	"github.com/lingodesk/placement-backend/internal/repository"
	"github.com/lingodesk/placement-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
)

// seedQuestion is one fixture question for the demo test.
type seedQuestion struct {
	text       string
	difficulty string
	choices    []string
	correct    int
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	testRepo := repository.NewTestRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	pageRepo := repository.NewPageRepository(pool)
	moduleRepo := repository.NewModuleCatalogRepository(pool)
	resultRepo := repository.NewResultRepository(pool)
	learnerRepo := repository.NewLearnerRepository(pool)
	teacherRepo := repository.NewTeacherRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)

	authService := service.NewAuthService(cfg, rdb)
	testService := service.NewTestService(testRepo, questionRepo, pageRepo, moduleRepo, rdb, log)
	catalogService := service.NewCatalogService(moduleRepo, log)
	learnerService := service.NewLearnerService(learnerRepo, resultRepo, authService, log)

	fmt.Println("=== Seeding Demo Data ===")

	// ─── Demo Teacher ─────────────────────────────────────────────────
	teacherEmail := "demo.teacher@lingodesk.io"
	teacher, err := teacherRepo.GetByEmail(ctx, teacherEmail)
	if err == pgx.ErrNoRows {
		role, rerr := roleRepo.GetByName(ctx, "head_teacher")
		if rerr != nil {
			log.Fatal().Err(rerr).Msg("Role 'head_teacher' missing; run migrations first")
		}
		hash, herr := bcrypt.GenerateFromPassword([]byte("demodemo"), cfg.BcryptCost)
		if herr != nil {
			log.Fatal().Err(herr).Msg("Failed to hash password")
		}
		teacher = &model.Teacher{
			Name:         "Demo Teacher",
			Email:        teacherEmail,
			PasswordHash: string(hash),
			RoleID:       role.ID,
		}
		if err := teacherRepo.Create(ctx, teacher); err != nil {
			log.Fatal().Err(err).Msg("Failed to create demo teacher")
		}
		fmt.Printf("Created demo teacher (ID %d, password 'demodemo')\n", teacher.ID)
	} else if err != nil {
		log.Fatal().Err(err).Msg("Failed to look up demo teacher")
	} else {
		fmt.Printf("Found existing demo teacher (ID %d)\n", teacher.ID)
	}

	// ─── Demo Learners ────────────────────────────────────────────────
	learnerNames := []string{
		"Ana Morales", "Bruno Costa", "Chen Wei", "Daria Novak", "Emil Johansson",
		"Fatima Haddad", "Goran Ilic", "Hana Sato", "Ivan Petrov", "Julia Kowalska",
	}
	languages := []string{"Spanish", "Portuguese", "Mandarin", "Polish", "Swedish",
		"Arabic", "Serbian", "Japanese", "Russian", "Polish"}

	created := 0
	for i, name := range learnerNames {
		email := fmt.Sprintf("learner%d@lingodesk.io", i+1)
		if _, err := learnerRepo.GetByEmail(ctx, email); err == nil {
			continue
		}
		_, err := learnerService.Create(ctx, &model.CreateLearnerRequest{
			Email:          email,
			Name:           name,
			NativeLanguage: languages[i],
			Password:       "demodemo",
		})
		if err != nil {
			fmt.Printf("Error creating learner %s: %v\n", email, err)
			continue
		}
		created++
	}
	fmt.Printf("Created %d demo learners (password 'demodemo')\n", created)

	// ─── Course Module Catalog ────────────────────────────────────────
	moduleTitles := map[string][]string{
		"beginner": {
			"Greetings and Introductions",
			"Everyday Vocabulary",
			"Present Simple Basics",
		},
		"intermediate_beginner": {
			"Past Tense Foundations",
			"Asking for Directions",
			"Shopping and Numbers",
		},
		"advanced_beginner": {
			"Conversational Connectors",
			"Future Plans and Intentions",
			"Reading Short Texts",
		},
	}

	moduleIDs := map[string][]uuid.UUID{}
	for level, titles := range moduleTitles {
		for _, title := range titles {
			m, err := catalogService.Create(ctx, &model.CreateModuleRequest{
				Title:       title,
				Description: fmt.Sprintf("Demo curriculum module: %s", title),
			})
			if err != nil {
				log.Fatal().Err(err).Str("title", title).Msg("Failed to create module")
			}
			moduleIDs[level] = append(moduleIDs[level], m.ID)
		}
	}
	fmt.Println("Created 9 catalog modules")

	// ─── Demo Placement Test ──────────────────────────────────────────
	test, err := testService.Create(ctx, teacher.ID, "English Placement Test (Demo)")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create demo test")
	}
	fmt.Printf("Created draft test %s\n", test.ID)

	questions := demoQuestions()
	var questionIDs []uuid.UUID
	for _, q := range questions {
		choices := make([]model.ChoicePayload, len(q.choices))
		for i, text := range q.choices {
			choices[i] = model.ChoicePayload{Text: text, IsCorrect: i == q.correct}
		}
		added, err := testService.AddQuestion(ctx, test.ID, teacher.ID, &model.AddQuestionRequest{
			QuestionText: q.text,
			Difficulty:   q.difficulty,
			Choices:      choices,
		})
		if err != nil {
			log.Fatal().Err(err).Str("question", q.text).Msg("Failed to add question")
		}
		questionIDs = append(questionIDs, added.ID)
	}
	fmt.Printf("Added %d questions\n", len(questionIDs))

	// Intro page, then question pages of 4.
	if _, err := testService.AddContentPage(ctx, test.ID, teacher.ID, &model.AddContentPageRequest{
		Title:   "Welcome",
		Content: "This short test places you in the right course. Answer each question; you can skip the whole test if you are brand new to English.",
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to add intro page")
	}
	for start := 0; start < len(questionIDs); start += 4 {
		end := start + 4
		if end > len(questionIDs) {
			end = len(questionIDs)
		}
		if _, err := testService.AddQuestionPage(ctx, test.ID, teacher.ID, &model.AddQuestionPageRequest{
			QuestionIDs: questionIDs[start:end],
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to add question page")
		}
	}

	// Module recommendations per outcome level.
	assignments := map[model.PlacementLevel][]uuid.UUID{
		model.LevelBeginner:             moduleIDs["beginner"],
		model.LevelIntermediateBeginner: moduleIDs["intermediate_beginner"],
		model.LevelAdvancedBeginner:     moduleIDs["advanced_beginner"],
	}
	for level, ids := range assignments {
		if err := testService.ReplaceAssignments(ctx, test.ID, teacher.ID, level, ids); err != nil {
			log.Fatal().Err(err).Str("level", string(level)).Msg("Failed to assign modules")
		}
	}

	if err := testService.Publish(ctx, test.ID, teacher.ID); err != nil {
		log.Fatal().Err(err).Msg("Failed to publish demo test")
	}

	fmt.Printf("\nSeed completed! Published demo test %s with %d questions.\n", test.ID, len(questionIDs))
}

// demoQuestions returns the fixture bank: 7 beginner, 6 intermediate,
// 7 advanced.
func demoQuestions() []seedQuestion {
	return []seedQuestion{
		// Beginner
		{"Choose the correct greeting for the morning.", "beginner",
			[]string{"Good night", "Good morning", "Goodbye"}, 1},
		{"'I ___ a student.'", "beginner",
			[]string{"am", "is", "are"}, 0},
		{"What is the plural of 'book'?", "beginner",
			[]string{"bookes", "books", "bookies"}, 1},
		{"'She ___ from Brazil.'", "beginner",
			[]string{"are", "am", "is"}, 2},
		{"Which word is a color?", "beginner",
			[]string{"Blue", "Table", "Run"}, 0},
		{"'___ is your name?'", "beginner",
			[]string{"Who", "What", "Where"}, 1},
		{"Choose the opposite of 'big'.", "beginner",
			[]string{"small", "tall", "old"}, 0},

		// Intermediate
		{"'Yesterday I ___ to the cinema.'", "intermediate",
			[]string{"go", "went", "gone", "going"}, 1},
		{"'She has lived here ___ 2019.'", "intermediate",
			[]string{"for", "since", "during", "from"}, 1},
		{"Choose the correct question tag: 'You like coffee, ___?'", "intermediate",
			[]string{"do you", "don't you", "aren't you", "didn't you"}, 1},
		{"'If it rains, we ___ at home.'", "intermediate",
			[]string{"stay", "will stay", "stayed", "would stay"}, 1},
		{"Which sentence is in the passive voice?", "intermediate",
			[]string{"The chef cooked dinner.", "Dinner was cooked by the chef.",
				"The chef is cooking dinner.", "The chef will cook dinner."}, 1},
		{"'I'm used ___ early.'", "intermediate",
			[]string{"to wake up", "to waking up", "waking up", "wake up"}, 1},

		// Advanced
		{"'Had I known about the meeting, I ___ attended.'", "advanced",
			[]string{"would have", "will have", "would", "had"}, 0},
		{"Choose the word closest in meaning to 'ubiquitous'.", "advanced",
			[]string{"rare", "everywhere", "ancient", "transparent"}, 1},
		{"'The proposal was turned ___ by the committee.'", "advanced",
			[]string{"off", "down", "over", "out"}, 1},
		{"Which sentence uses the subjunctive correctly?", "advanced",
			[]string{"I suggest that he goes home.", "I suggest that he go home.",
				"I suggest that he went home.", "I suggest that he going home."}, 1},
		{"'___ the bad weather, the flight departed on time.'", "advanced",
			[]string{"Despite", "Although", "However", "Even"}, 0},
		{"Choose the correct reported speech: She said, 'I will call you tomorrow.'", "advanced",
			[]string{"She said she will call me tomorrow.",
				"She said she would call me the next day.",
				"She said she calls me tomorrow.",
				"She said she would call me yesterday."}, 1},
		{"'Scarcely ___ the house when it started to rain.'", "advanced",
			[]string{"I had left", "had I left", "I left", "did I leave"}, 1},
	}
}
