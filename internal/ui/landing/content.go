// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package landing

// Card is a titled blurb used by the features and how-it-works sections.
type Card struct {
	Title string
	Body  string
}

// Testimonial is one user quote with a star rating.
type Testimonial struct {
	Quote  string
	Author string
	Rating int
}

const (
	heroTitle    = "Your Emotional AI Companion"
	heroSubtitle = "Experience the future of emotional support with our advanced AI companion, " +
		"powered by cutting-edge technology and genuine understanding"
	heroButton = "Start Your Journey"

	ctaTitle  = "Ready to Transform Your Emotional Well-being?"
	ctaBody   = "Join thousands of users who have found support and understanding with our AI companion"
	ctaButton = "Get Started Now"
)

var features = []Card{
	{"24/7 AI Companion", "Always available to listen and support you through any situation"},
	{"Advanced Intelligence", "Powered by state-of-the-art language models and emotional recognition"},
	{"Secure & Private", "Your conversations stay in memory and vanish when you quit"},
}

var steps = []Card{
	{"Create Account", "Sign up in seconds with your email"},
	{"Start Chatting", "Begin your conversation with our emotionally intelligent AI"},
	{"Share & Connect", "Open up about your thoughts, feelings, and experiences"},
	{"Grow Together", "Receive personalized insights and emotional support"},
}

var testimonials = []Testimonial{
	{"This AI companion has been incredibly helpful in managing my daily stress and anxiety.", "Sarah J.", 5},
	{"I'm amazed by how understanding and insightful the conversations are. It feels very natural.", "Michael R.", 5},
	{"Having a 24/7 emotional support system has made a significant difference in my life.", "Emma L.", 5},
}
