package diagnosis

// DefaultTable returns a fresh copy of the built-in symptom table.
func DefaultTable() Table {
	return defaultTable.Clone()
}

var defaultTable = Table{
	{
		Keyword: "fever",
		Candidates: []Candidate{
			{
				Condition:            "Influenza",
				Confidence:           85,
				Description:          "Viral respiratory infection with sudden fever, body aches and fatigue",
				RecommendedTests:     []string{"Rapid Influenza Diagnostic Test", "Complete Blood Count"},
				SuggestedMedications: []string{"Oseltamivir", "Paracetamol"},
			},
			{
				Condition:            "Common Cold",
				Confidence:           70,
				Description:          "Mild viral infection of the nose and throat",
				RecommendedTests:     []string{"Clinical Examination"},
				SuggestedMedications: []string{"Paracetamol", "Cetirizine"},
			},
			{
				Condition:            "Dengue Fever",
				Confidence:           60,
				Description:          "Mosquito-borne viral infection with high fever and joint pain",
				RecommendedTests:     []string{"NS1 Antigen Test", "Platelet Count"},
				SuggestedMedications: []string{"Paracetamol", "Oral Rehydration Salts"},
			},
			{
				Condition:            "Typhoid Fever",
				Confidence:           55,
				Description:          "Bacterial infection with sustained fever and abdominal discomfort",
				RecommendedTests:     []string{"Widal Test", "Blood Culture"},
				SuggestedMedications: []string{"Azithromycin", "Ceftriaxone"},
			},
		},
	},
	{
		Keyword: "cough",
		Candidates: []Candidate{
			{
				Condition:            "Bronchitis",
				Confidence:           80,
				Description:          "Inflammation of the bronchial tubes with persistent cough",
				RecommendedTests:     []string{"Chest X-Ray", "Sputum Culture"},
				SuggestedMedications: []string{"Dextromethorphan", "Guaifenesin"},
			},
			{
				Condition:            "Common Cold",
				Confidence:           75,
				Description:          "Mild viral infection of the nose and throat",
				RecommendedTests:     []string{"Clinical Examination"},
				SuggestedMedications: []string{"Paracetamol", "Cetirizine"},
			},
			{
				Condition:            "Pneumonia",
				Confidence:           65,
				Description:          "Infection that inflames the air sacs of one or both lungs",
				RecommendedTests:     []string{"Chest X-Ray", "Complete Blood Count", "Sputum Culture"},
				SuggestedMedications: []string{"Amoxicillin", "Azithromycin"},
			},
			{
				Condition:            "Influenza",
				Confidence:           70,
				Description:          "Viral respiratory infection with sudden fever, body aches and fatigue",
				RecommendedTests:     []string{"Rapid Influenza Diagnostic Test"},
				SuggestedMedications: []string{"Oseltamivir"},
			},
		},
	},
	{
		Keyword: "headache",
		Candidates: []Candidate{
			{
				Condition:            "Tension Headache",
				Confidence:           80,
				Description:          "Band-like pain often linked to stress or posture",
				RecommendedTests:     []string{"Clinical Examination"},
				SuggestedMedications: []string{"Ibuprofen", "Paracetamol"},
			},
			{
				Condition:            "Migraine",
				Confidence:           75,
				Description:          "Recurrent throbbing headache, often one-sided, with light sensitivity",
				RecommendedTests:     []string{"Neurological Examination"},
				SuggestedMedications: []string{"Sumatriptan", "Naproxen"},
			},
			{
				Condition:            "Sinusitis",
				Confidence:           60,
				Description:          "Inflammation of the sinuses causing facial pressure and headache",
				RecommendedTests:     []string{"Sinus X-Ray"},
				SuggestedMedications: []string{"Amoxicillin", "Saline Nasal Spray"},
			},
		},
	},
	{
		Keyword: "chest pain",
		Candidates: []Candidate{
			{
				Condition:            "Angina",
				Confidence:           85,
				Description:          "Chest pain caused by reduced blood flow to the heart muscle",
				RecommendedTests:     []string{"ECG", "Troponin Test", "Stress Test"},
				SuggestedMedications: []string{"Nitroglycerin", "Aspirin"},
			},
			{
				Condition:            "Gastroesophageal Reflux Disease",
				Confidence:           70,
				Description:          "Stomach acid reflux causing burning chest pain",
				RecommendedTests:     []string{"Upper Endoscopy", "pH Monitoring"},
				SuggestedMedications: []string{"Omeprazole", "Antacids"},
			},
			{
				Condition:            "Costochondritis",
				Confidence:           55,
				Description:          "Inflammation of the cartilage connecting ribs to the breastbone",
				RecommendedTests:     []string{"Physical Examination", "Chest X-Ray"},
				SuggestedMedications: []string{"Ibuprofen"},
			},
		},
	},
	{
		Keyword: "stomach pain",
		Candidates: []Candidate{
			{
				Condition:            "Gastritis",
				Confidence:           80,
				Description:          "Inflammation of the stomach lining",
				RecommendedTests:     []string{"H. pylori Test", "Upper Endoscopy"},
				SuggestedMedications: []string{"Omeprazole", "Antacids"},
			},
			{
				Condition:            "Gastroenteritis",
				Confidence:           75,
				Description:          "Infection of the digestive tract with cramps, vomiting or diarrhoea",
				RecommendedTests:     []string{"Stool Test", "Electrolyte Panel"},
				SuggestedMedications: []string{"Oral Rehydration Salts", "Loperamide"},
			},
			{
				Condition:            "Appendicitis",
				Confidence:           60,
				Description:          "Inflamed appendix, typically right lower abdominal pain",
				RecommendedTests:     []string{"Abdominal Ultrasound", "Complete Blood Count"},
				SuggestedMedications: []string{"Analgesics pending surgical review"},
			},
		},
	},
	{
		Keyword: "fatigue",
		Candidates: []Candidate{
			{
				Condition:            "Iron Deficiency Anemia",
				Confidence:           75,
				Description:          "Low iron stores reducing oxygen delivery to tissues",
				RecommendedTests:     []string{"Complete Blood Count", "Serum Ferritin"},
				SuggestedMedications: []string{"Ferrous Sulfate", "Vitamin C"},
			},
			{
				Condition:            "Hypothyroidism",
				Confidence:           70,
				Description:          "Underactive thyroid slowing metabolism",
				RecommendedTests:     []string{"TSH", "Free T4"},
				SuggestedMedications: []string{"Levothyroxine"},
			},
			{
				Condition:            "Influenza",
				Confidence:           60,
				Description:          "Viral respiratory infection with sudden fever, body aches and fatigue",
				RecommendedTests:     []string{"Rapid Influenza Diagnostic Test"},
				SuggestedMedications: []string{"Oseltamivir"},
			},
			{
				Condition:            "Vitamin D Deficiency",
				Confidence:           60,
				Description:          "Low vitamin D levels causing tiredness and muscle weakness",
				RecommendedTests:     []string{"25-Hydroxy Vitamin D"},
				SuggestedMedications: []string{"Cholecalciferol"},
			},
		},
	},
	{
		Keyword: "joint pain",
		Candidates: []Candidate{
			{
				Condition:            "Osteoarthritis",
				Confidence:           80,
				Description:          "Degenerative wear of joint cartilage",
				RecommendedTests:     []string{"Joint X-Ray"},
				SuggestedMedications: []string{"Paracetamol", "Topical Diclofenac"},
			},
			{
				Condition:            "Rheumatoid Arthritis",
				Confidence:           70,
				Description:          "Autoimmune inflammation of multiple joints",
				RecommendedTests:     []string{"Rheumatoid Factor", "Anti-CCP", "ESR"},
				SuggestedMedications: []string{"Methotrexate", "Prednisone"},
			},
			{
				Condition:            "Gout",
				Confidence:           65,
				Description:          "Uric acid crystal deposits causing acute joint inflammation",
				RecommendedTests:     []string{"Serum Uric Acid", "Joint Fluid Analysis"},
				SuggestedMedications: []string{"Colchicine", "Allopurinol"},
			},
		},
	},
	{
		Keyword: "skin rash",
		Candidates: []Candidate{
			{
				Condition:            "Contact Dermatitis",
				Confidence:           80,
				Description:          "Skin reaction after contact with an irritant or allergen",
				RecommendedTests:     []string{"Patch Test"},
				SuggestedMedications: []string{"Hydrocortisone Cream", "Cetirizine"},
			},
			{
				Condition:            "Eczema",
				Confidence:           70,
				Description:          "Chronic itchy, inflamed skin",
				RecommendedTests:     []string{"Clinical Examination"},
				SuggestedMedications: []string{"Emollients", "Topical Corticosteroids"},
			},
			{
				Condition:            "Allergic Reaction",
				Confidence:           65,
				Description:          "Immune response to food, drug or environmental allergen",
				RecommendedTests:     []string{"Allergy Panel", "Serum IgE"},
				SuggestedMedications: []string{"Cetirizine", "Loratadine"},
			},
		},
	},
	{
		Keyword: "dizziness",
		Candidates: []Candidate{
			{
				Condition:            "Benign Paroxysmal Positional Vertigo",
				Confidence:           75,
				Description:          "Brief spinning episodes triggered by head movement",
				RecommendedTests:     []string{"Dix-Hallpike Test"},
				SuggestedMedications: []string{"Meclizine"},
			},
			{
				Condition:            "Orthostatic Hypotension",
				Confidence:           65,
				Description:          "Blood pressure drop on standing up",
				RecommendedTests:     []string{"Orthostatic Blood Pressure Measurement"},
				SuggestedMedications: []string{"Fludrocortisone"},
			},
			{
				Condition:            "Dehydration",
				Confidence:           60,
				Description:          "Fluid loss exceeding intake",
				RecommendedTests:     []string{"Electrolyte Panel", "Urinalysis"},
				SuggestedMedications: []string{"Oral Rehydration Salts"},
			},
		},
	},
	{
		Keyword: "shortness of breath",
		Candidates: []Candidate{
			{
				Condition:            "Asthma",
				Confidence:           80,
				Description:          "Reversible airway narrowing with wheeze and breathlessness",
				RecommendedTests:     []string{"Spirometry", "Peak Flow Measurement"},
				SuggestedMedications: []string{"Salbutamol Inhaler", "Budesonide Inhaler"},
			},
			{
				Condition:            "Chronic Obstructive Pulmonary Disease",
				Confidence:           70,
				Description:          "Progressive airflow limitation, usually smoking related",
				RecommendedTests:     []string{"Spirometry", "Chest X-Ray"},
				SuggestedMedications: []string{"Tiotropium", "Salbutamol Inhaler"},
			},
			{
				Condition:            "Pneumonia",
				Confidence:           70,
				Description:          "Infection that inflames the air sacs of one or both lungs",
				RecommendedTests:     []string{"Chest X-Ray", "Complete Blood Count"},
				SuggestedMedications: []string{"Amoxicillin", "Azithromycin"},
			},
			{
				Condition:            "Heart Failure",
				Confidence:           65,
				Description:          "Heart unable to pump enough blood, causing fluid build-up",
				RecommendedTests:     []string{"Echocardiogram", "BNP Test", "Chest X-Ray"},
				SuggestedMedications: []string{"Furosemide", "Lisinopril"},
			},
		},
	},
}
