package models

// DefaultTenantPassword is the first-boot tenant password.
const DefaultTenantPassword = "2002"

// DefaultInactivityTimeout is the first-boot auto-lock window in seconds.
const DefaultInactivityTimeout = 7

// DefaultDocument returns the document written on first boot.
func DefaultDocument() ConfigDocument {
	return ConfigDocument{
		Snapshot: Snapshot{
			LightTheme: DefaultTheme,
			HeroConfig: HeroConfig{
				HeroImage:                 "https://picsum.photos/seed/spa-hero/1600/900",
				HeroTitle:                 "Discover Your Inner Serenity",
				HeroSubtitle:              "Your sanctuary for professional waxing and beauty treatments.",
				HeroOverlayColor:          "#000000",
				HeroOverlayOpacity:        0.5,
				HeroButtonPrimaryBg:       DefaultTheme.Primary,
				HeroButtonPrimaryText:     DefaultTheme.TextPrimary,
				HeroButtonSecondaryBg:     "transparent",
				HeroButtonSecondaryText:   "#FFFFFF",
				HeroButtonSecondaryBorder: "#FFFFFF",
				MediaButtonPhotoBg:        DefaultTheme.Primary,
				MediaButtonPhotoText:      DefaultTheme.TextPrimary,
				MediaButtonVideoBg:        DefaultTheme.Accent,
				MediaButtonVideoText:      DefaultTheme.Background,
				MediaButtonGalleryBg:      DefaultTheme.Secondary,
				MediaButtonGalleryText:    DefaultTheme.TextPrimary,
				MediaButtonGalleryBorder:  DefaultTheme.Primary,
			},
			FontConfig: FontConfig{
				HeadingFont: "'Montserrat', sans-serif",
				BodyFont:    "'Roboto', sans-serif",
			},
			Services:         defaultServices(),
			FeaturedServices: defaultFeaturedServices(),
			SocialLinks: []SocialLink{
				{ID: 1, Platform: "instagram", URL: "https://instagram.com"},
				{ID: 2, Platform: "facebook", URL: "https://facebook.com"},
				{ID: 3, Platform: "twitter", URL: "https://twitter.com"},
			},
			CustomFields: []CustomFormField{},
			Reviews:      defaultReviews(),
			GalleryItems: []GalleryItem{},
			WhyChooseUsItems: []WhyChooseUsItem{
				{ID: 1, Title: "Expert Estheticians", Description: "Our certified professionals are passionate about their craft and dedicated to providing personalized care."},
				{ID: 2, Title: "Premium Products", Description: "We use only high-quality, gentle, and effective products to ensure the best results for your skin."},
				{ID: 3, Title: "Tranquil Atmosphere", Description: "Escape the everyday hustle in our serene and beautifully designed sanctuary built for your relaxation."},
			},
			SeasonalOffer: SeasonalOffer{
				BackgroundImage: "https://picsum.photos/seed/offer/1200/600",
				Title:           "Seasonal Rejuvenation Package",
				Description:     "Indulge in our limited-time offer! Get a Luxury Facial and a 30-minute back massage for just $150. A perfect escape to refresh your body and soul.",
				ButtonText:      "Claim This Offer",
			},
			InstagramFeed: InstagramFeed{
				Title:    "Follow Our Journey",
				Username: "@edenspa_official",
				ImageURLs: []string{
					"https://picsum.photos/seed/insta1/300/300",
					"https://picsum.photos/seed/insta2/300/300",
					"https://picsum.photos/seed/insta3/300/300",
					"https://picsum.photos/seed/insta4/300/300",
					"https://picsum.photos/seed/insta5/300/300",
					"https://picsum.photos/seed/insta6/300/300",
				},
			},
			WhatsappNumber:     "+15551234567",
			WhatsappMessage:    "Hello! I am interested in your services.",
			ContactEmail:       "contact@edenspa.com",
			ContactTip:         "For urgent inquiries, please call us. For all other questions, feel free to use the WhatsApp chat!",
			LogoURL:            "",
			BusinessName:       "Eden Spa",
			Tagline:            "Waxing & Beauty",
			ShowPhotoGallery:   true,
			ShowVideoGallery:   true,
			ShowMainGallery:    true,
			ShowDesignerCredit: true,
			DesignerCreditURL:  "https://x.com/kastebrands",
			InactivityTimeout:  DefaultInactivityTimeout,
		},
		UserPassword: DefaultTenantPassword,
	}
}

func defaultServices() []Service {
	return []Service{
		{
			ID:               1,
			Name:             "Luxury Facial Treatment",
			Description:      "A rejuvenating facial treatment customized to your skin type. Includes cleansing, exfoliation, extraction, massage, and a nourishing mask.",
			Price:            "$120",
			PhotoURL:         "https://picsum.photos/seed/facial/600/400",
			VideoURL:         "https://www.youtube.com/watch?v=9g2wG8onorI",
			VideoOrientation: "landscape",
			Layout:           "standard",
			Promotion:        "Popular",
		},
		{
			ID:                 2,
			Name:               "Full Leg Waxing",
			Description:        "Our professional waxing service leaves your legs smooth and hair-free for weeks. We use high-quality, gentle wax for sensitive skin.",
			Price:              "$75",
			PhotoURL:           "https://picsum.photos/seed/legwax/600/400",
			VideoOrientation:   "landscape",
			Layout:             "standard",
			Promotion:          "20% Off",
			DiscountPercentage: 20,
		},
		{
			ID:               3,
			Name:             "Eyebrow Shaping & Tinting",
			Description:      "Perfectly sculpted and tinted eyebrows to frame your face. Our experts will create the ideal shape and color to enhance your features.",
			Price:            "$45",
			PhotoURL:         "https://picsum.photos/seed/eyebrow/600/400",
			VideoURL:         "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			VideoOrientation: "landscape",
			Layout:           "standard",
		},
		{
			ID:               4,
			Name:             "Relaxing Swedish Massage",
			Description:      "A classic full-body massage using long, flowing strokes to reduce tension, improve circulation, and promote deep relaxation.",
			Price:            "$95 / 60 min",
			PhotoURL:         "https://picsum.photos/seed/massage/600/400",
			VideoOrientation: "landscape",
			Layout:           "standard",
			Promotion:        "New!",
		},
	}
}

func defaultFeaturedServices() []Service {
	return []Service{
		{
			ID:                 101,
			Name:               "Featured Facial",
			Description:        "An exclusive facial treatment only available for a limited time. Experience pure bliss.",
			Price:              "$150",
			PhotoURL:           "https://picsum.photos/seed/feature1/600/400",
			VideoOrientation:   "landscape",
			Layout:             "standard",
			Promotion:          "Homepage Special",
			DiscountPercentage: 10,
			ShowInPopup:        true,
		},
		{
			ID:               102,
			Name:             "Deluxe Pedicure",
			Description:      "Pamper your feet with our deluxe pedicure, including a soak, scrub, mask, and massage.",
			Price:            "$85",
			PhotoURL:         "https://picsum.photos/seed/feature2/600/400",
			VideoOrientation: "landscape",
			Layout:           "standard",
			Promotion:        "Must Try!",
			ShowInPopup:      true,
		},
		{
			ID:               103,
			Name:             "Hot Stone Massage",
			Description:      "Melt away tension with our hot stone massage, using smooth, heated stones for deep relaxation.",
			Price:            "$110 / 75 min",
			PhotoURL:         "https://picsum.photos/seed/feature3/600/400",
			VideoOrientation: "landscape",
			Layout:           "standard",
			Promotion:        "Fan Favorite",
			ShowInPopup:      true,
		},
		{
			ID:               104,
			Name:             "Full Body Scrub",
			Description:      "Exfoliate and hydrate your skin with our invigorating full-body scrub treatment.",
			Price:            "$90",
			PhotoURL:         "https://picsum.photos/seed/feature4/600/400",
			VideoOrientation: "landscape",
			Layout:           "standard",
		},
	}
}

func defaultReviews() []Review {
	return []Review{
		{ID: 1, Name: "Jessica M.", Comment: "An absolutely divine experience! The best facial I've ever had. My skin feels incredible. I'll definitely be back.", Rating: 5, PhotoURL: "https://i.pravatar.cc/150?img=1", Featured: true},
		{ID: 2, Name: "Sarah L.", Comment: "The waxing service was so quick and virtually painless. The staff are so professional and friendly. Highly recommend!", Rating: 5, PhotoURL: "https://i.pravatar.cc/150?img=2", Featured: true},
		{ID: 3, Name: "Emily R.", Comment: "I floated out of Eden Spa after my massage. A truly relaxing atmosphere and a wonderful escape from the city.", Rating: 5, PhotoURL: "https://i.pravatar.cc/150?img=3", Featured: true},
		{ID: 4, Name: "Michael B.", Comment: "Great attention to detail on the eyebrow shaping. The tint color was perfect. Very happy with the result.", Rating: 4, Featured: false},
	}
}
