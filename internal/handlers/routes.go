package handlers

import (
	"quiz-portal/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Routes struct {
	Auth     *AuthHandler
	Profile  *ProfileHandler
	Quiz     *QuizHandler
	Admin    *AdminHandler
	AdminKey string
}

// Register mounts the application routes. Visitor routes run behind the
// sessions middleware; admin routes are stateless and use the API key.
func (r *Routes) Register(router gin.IRouter, sessions gin.HandlerFunc) {
	adminGroup := router.Group("/admin")
	adminGroup.Use(middleware.AdminKey(r.AdminKey))
	{
		adminGroup.POST("/quizzes", r.Admin.CreateQuiz)
		adminGroup.POST("/questions", r.Admin.CreateQuestion)
		adminGroup.DELETE("/submissions/:id", r.Admin.DeleteSubmission)
	}

	public := router.Group("")
	public.Use(sessions)
	{
		public.GET("/login", r.Auth.LoginPage)
		public.POST("/login", r.Auth.Login)
		public.GET("/logout", r.Auth.Logout)
		public.POST("/logout", r.Auth.Logout)

		public.GET("/register", r.Auth.RegistrationStep)
		public.POST("/register/email", r.Auth.StartRegistration)
		public.POST("/register/complete", r.Auth.CompleteRegistration)

		public.POST("/password-reset", r.Profile.RequestPasswordReset)
		public.POST("/password-reset/verify", r.Profile.ConfirmPasswordReset)
	}

	protected := router.Group("")
	protected.Use(sessions, middleware.RequireLogin())
	{
		protected.GET("/dashboard", r.Quiz.Dashboard)

		protected.GET("/profile", r.Profile.GetProfile)
		protected.PUT("/profile", r.Profile.UpdateProfile)
		protected.POST("/profile/files", r.Profile.UploadFile)

		protected.GET("/quizzes/:id/questions", r.Quiz.ListQuestions)
		protected.POST("/quizzes/:id/questions", r.Quiz.SubmitAnswers)
		protected.GET("/quizzes/:id/result", r.Quiz.Result)
	}
}
