package intake

// Topic names of the default intake script.
const (
	TopicBasicInformation   = "basic_information"
	TopicLifestyle          = "lifestyle"
	TopicMedicalHistory     = "medical_history"
	TopicRecentHealthStatus = "recent_health_status"
	TopicHospitalization    = "hospitalization"
	TopicFemaleHealth       = "female_health"
	TopicInsuranceHistory   = "insurance_history"
	TopicFinalConfirmation  = "final_confirmation"
)

var defaultTopics = []Topic{
	{
		Name: TopicBasicInformation,
		Questions: []string{
			"Could you please confirm your full name?",
			"Could you please confirm your date of birth?",
			"Please provide the height and weight details for all members to be covered.",
		},
	},
	{
		Name: TopicLifestyle,
		Questions: []string{
			"Has anyone used tobacco products in the past year?",
			"How frequently? (Daily / Weekly / Few times a year)",
			"Has anyone consumed alcohol in the past year?",
			"How frequently? (Daily / Weekly / Few times a year)",
		},
	},
	{
		Name: TopicMedicalHistory,
		Questions: []string{
			"Has anyone been diagnosed with any of the following conditions: Diabetes, High blood pressure, Thyroid disorder, Asthma, Cataract, Glaucoma, Arthritis, Spondylosis, Hernia, Kidney disorders, Liver disorders, Heart disease, Stroke, Epilepsy, Cancer, Mental health conditions, Anemia, Sleep apnea, Piles, Autoimmune disorders, or others?",
			"When was it diagnosed?",
			"What treatment was given - medical, surgical, or hospitalization?",
			"Are any medications being taken? Please specify names and dosages.",
			"Were there any surgical procedures or hospitalizations? Please provide the year and details.",
			"Are there any ongoing symptoms?",
			"Have there been any recurrences or complications?",
			"Have there been any relevant investigations in the last 3 months?",
			"Could you share your treating doctor's name and clinic/hospital details?",
		},
	},
	{
		Name: TopicRecentHealthStatus,
		Questions: []string{
			"Have any members taken prescribed medicines in the past few weeks?",
			"Is anyone currently experiencing any of these symptoms: pain, fatigue, weight loss, dizziness, breathing difficulty, acidity, bleeding, vision issues, ENT issues, swelling, numbness, difficulty walking?",
		},
	},
	{
		Name: TopicHospitalization,
		Questions: []string{
			"Has anyone been advised to undergo or has undergone hospitalization for any illness or surgery?",
			"What was the surgery for and when was it performed?",
			"How many days was the hospitalization?",
			"Were there any post-surgery complications?",
			"Are there any current symptoms or recurrence?",
		},
	},
	{
		Name: TopicFemaleHealth,
		Questions: []string{
			"Is anyone currently pregnant?",
			"When is the baby due? (1-3, 3-6, or 6-9 months)",
			"Are there any pregnancy-related complications?",
			"Are there any pregnancy-related medications being taken?",
			"Has anyone experienced gynecological issues like menstrual complaints, breast lumps, fibroid uterus, or endometriosis?",
		},
	},
	{
		Name: TopicInsuranceHistory,
		Questions: []string{
			"Do you have any existing health insurance coverage?",
			"Have you made any claims in the last 5 years?",
			"Has any health insurance proposal ever been declined, postponed, or accepted with special terms?",
		},
	},
	{
		Name: TopicFinalConfirmation,
		Questions: []string{
			"Is there anything else about your health you'd like to share?",
			"Please confirm that you've provided accurate information to the best of your knowledge.",
		},
	},
}

// DefaultCatalog returns the built-in health insurance intake script.
func DefaultCatalog() Catalog {
	c, err := NewCatalog(defaultTopics...)
	if err != nil {
		panic(err)
	}
	return c
}
