package services

import (
	"slices"

	"advisory-service/internal/models"
)

var navigation = []models.NavLink{
	{Label: "Home", Path: "/"},
	{Label: "Dashboard", Path: "/dashboard"},
	{Label: "Crop Advisory", Path: "/crop-suggestion"},
	{Label: "Soil Health", Path: "/soil-health"},
	{Label: "AI Assistant", Path: "/chatbot"},
}

var landingPage = models.Landing{
	Brand:   "Krishi Mitr",
	Tagline: "Your Farming Companion",
	Hero: models.Hero{
		Title: "Smart Farming Made Simple",
		Subtitle: "Get personalized crop recommendations, weather insights, and farming advice powered by AI. " +
			"Transform your agricultural decisions with data-driven guidance.",
		Actions: []models.NavLink{
			{Label: "Start Dashboard", Path: "/dashboard"},
			{Label: "Try Advisory", Path: "/crop-suggestion"},
		},
		Stats: []models.Stat{
			{Value: "50M+", Label: "Farmers Supported"},
			{Value: "95%", Label: "Accuracy Rate"},
			{Value: "40%", Label: "Yield Increase"},
		},
		Recommendation: models.AdvisoryCrop{Crop: "Rice", Match: 85, Note: "Based on soil & weather data", Tone: models.ToneGood},
	},
	Features: []models.Feature{
		{Title: "Crop Recommendations", Description: "AI-powered suggestions based on your soil type, weather conditions, and regional data.", Tone: "green"},
		{Title: "Weather Intelligence", Description: "Real-time weather forecasts and alerts to optimize your planting and harvesting schedule.", Tone: "sky"},
		{Title: "Yield Optimization", Description: "Data-driven insights to maximize your crop yield and improve farming efficiency.", Tone: "gold"},
		{Title: "Pest & Disease Control", Description: "Early warning system for pest outbreaks and disease prevention strategies.", Tone: "destructive"},
		{Title: "Mobile Friendly", Description: "Access all features through our user-friendly mobile app in your preferred language.", Tone: "accent"},
		{Title: "Regional Expertise", Description: "Localized advice tailored to your specific region's climate and soil conditions.", Tone: "earth"},
	},
	Advisory: models.AdvisoryPreview{
		Conditions: []models.Stat{
			{Value: "28°C", Label: "Temperature"},
			{Value: "75%", Label: "Humidity"},
			{Value: "Kharif", Label: "Season"},
		},
		WeatherAlert: "Moderate rainfall expected in 2 days. Plan irrigation accordingly.",
		Crops: []models.AdvisoryCrop{
			{Crop: "Rice", Match: 95, Note: "Excellent match for current soil and weather conditions.", Tone: models.ToneGood},
			{Crop: "Cotton", Match: 78, Note: "Good option with high market demand this season.", Tone: models.ToneCaution},
			{Crop: "Sugarcane", Match: 65, Note: "Consider for long-term cultivation with proper irrigation.", Tone: models.ToneInfo},
		},
		NextUpdate: "Based on weather forecast changes",
	},
	About: models.About{
		Lead: "Agriculture contributes nearly 18% to India's GDP and provides livelihood to over half of the population. " +
			"Yet many farmers still rely on traditional practices that may not match today's challenges like unpredictable weather and declining yields.",
		Challenge: "Farmers often lack personalized guidance, leading to poor crop choices, excessive fertilizer use, and reduced income. " +
			"Expert advice is either out of reach or not tailored to local conditions.",
		Solution: "ACAS (Agriculture Crop Advisory System) uses Machine Learning, Weather APIs, and Soil Health Data to provide personalized, " +
			"timely advice - like having a digital farming expert in every farmer's pocket.",
		Objectives: []string{
			"Recommend suitable crops based on soil type, nutrients, weather, and region",
			"Provide weather-based guidance for sowing, irrigation, and harvesting decisions",
			"Suggest fertilizer and irrigation plans with accurate dosages and schedules",
			"Assist in pest and disease control with early warning systems",
			"Offer easy-to-use interface in local languages for better accessibility",
		},
	},
	Footer: models.Footer{
		Tagline: "Empowering farmers with intelligent crop advisory system powered by AI and real-time data analytics.",
		Services: []string{
			"Crop Recommendations",
			"Weather Intelligence",
			"Soil Analysis",
			"Pest Control Advisory",
			"Yield Optimization",
		},
		Email:     "support@krishimitr.com",
		Phone:     "+91 1800-123-4567",
		Address:   "Agricultural Technology Hub, New Delhi, India",
		Copyright: "© 2024 Krishi Mitr. All rights reserved. | Designed with ❤️ for Indian farmers",
	},
}

type IContentService interface {
	Landing() models.Landing
	Navigation() []models.NavLink
}

type ContentService struct{}

func NewContentService() IContentService {
	return ContentService{}
}

// Landing returns a copy of the landing page content; callers may modify it freely.
func (ContentService) Landing() models.Landing {
	landing := landingPage
	landing.Navigation = slices.Clone(navigation)
	landing.Footer.Links = slices.Clone(navigation)
	landing.Hero.Actions = slices.Clone(landingPage.Hero.Actions)
	landing.Hero.Stats = slices.Clone(landingPage.Hero.Stats)
	landing.Features = slices.Clone(landingPage.Features)
	landing.Advisory.Conditions = slices.Clone(landingPage.Advisory.Conditions)
	landing.Advisory.Crops = slices.Clone(landingPage.Advisory.Crops)
	landing.About.Objectives = slices.Clone(landingPage.About.Objectives)
	landing.Footer.Services = slices.Clone(landingPage.Footer.Services)
	return landing
}

func (ContentService) Navigation() []models.NavLink {
	return slices.Clone(navigation)
}
