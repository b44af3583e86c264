package schema

func b(name string) Field  { return Field{Name: name, Kind: Bool} }
func i(name string) Field  { return Field{Name: name, Kind: Int} }
func fl(name string) Field { return Field{Name: name, Kind: Float} }
func s(name string) Field  { return Field{Name: name, Kind: String} }
func tx(name string) Field { return Field{Name: name, Kind: Text} }
func d(name string) Field  { return Field{Name: name, Kind: Date} }

func managed(name string, kind Kind) Field {
	return Field{Name: name, Kind: kind, Managed: true}
}

// Section catalogue. Adding a section is one register call plus running the
// migrations.
func init() {
	register(&Section{Name: "data", Stage: StageOwner, Fields: []Field{
		s("complete_name"), s("document_number"), s("address"), d("date_of_birth"),
		s("nationality"), s("email"), s("civil_status"), s("phone"), i("children"),
		tx("tasks"),
	}})

	register(&Section{Name: "data_img", Stage: StageNested, Owner: "data",
		ForeignKey: "medical_record_data_id", Slot: "data_images",
		Fields: []Field{managed("url", String)},
	})

	register(&Section{Name: "signatures", Stage: StageSignature, Slot: "signatures", Fields: []Field{
		managed("url", String), managed("professional_id", String), managed("created_at", Timestamp),
		s("licence"), d("signed_at"),
	}})

	register(&Section{Name: "bucodental_exam", Stage: StageRegular, Fields: []Field{
		b("prosthesis"), b("caries"), b("altered_gums"), b("partial_denture"), tx("observations"),
	}})

	register(&Section{Name: "cardiovascular_exam", Stage: StageRegular, Fields: []Field{
		fl("heart_rate"), fl("blood_pressure"), b("irregular_rhythm"), b("altered_sounds"),
		b("extrasystoles"), b("murmurs"), b("absent_peripheral_pulses"), b("varicose_veins"),
		tx("observations"),
	}})

	register(&Section{Name: "clinical_exam", Stage: StageRegular, Fields: []Field{
		fl("height_cm"), fl("weight_kg"), fl("spo2_percent"), fl("bmi"),
		fl("blood_pressure_min"), fl("blood_pressure_max"),
	}})

	register(&Section{Name: "derivations", Stage: StageRegular, Fields: []Field{
		tx("specialists"),
	}})

	register(&Section{Name: "digestive_exam", Stage: StageRegular, Fields: []Field{
		b("surgical_scars"), b("hemorrhoids"), b("abdominal_pain"), b("hepatomegaly"),
		b("splenomegaly"), b("lymphadenopathy"), b("hernias"), tx("observations"),
	}})

	register(&Section{Name: "evaluation_type", Stage: StageRegular, Fields: []Field{
		b("pre_employment"), b("graduation"), b("post_prolonged_illness"), b("periodic"),
		b("position_change"), b("sport_aptitude"), s("other"),
	}})

	register(&Section{Name: "family_history", Stage: StageRegular, Fields: []Field{
		b("father_alive"), b("mother_alive"), b("brothers_alive"), b("sisters_alive"),
		b("spouse_alive"), b("children_alive"), b("mental_illnesses"),
		b("cardiovascular_illnesses"), b("kidney_problems"), b("digestive_problems"),
		b("asthma"), b("tuberculosis"), b("diabetes"), b("rheumatism"), b("cancer"),
		s("cancer_type"), tx("observations"),
	}})

	register(&Section{Name: "genitourinary_exam", Stage: StageRegular, Fields: []Field{
		b("women_breast_alterations"), b("women_gynecological_alterations"),
		b("women_last_menstrual_period"), b("women_menstrual_pain"), b("women_altered_discharge"),
		b("women_contraceptives"), b("women_natural_birth"), b("women_miscarriages"),
		b("women_cesarean"), b("men_breast_alterations"), b("men_testicular_alterations"),
		tx("observations"),
	}})

	register(&Section{Name: "habits", Stage: StageRegular, Fields: []Field{
		b("diet"), b("tobacco_use"), i("tobacco_quantity"), b("alcohol_use"),
		i("alcohol_quantity"), b("drug_use"), s("drug_type"), b("sleep_alteration"),
		i("sleep_hours"), b("daily_diet"), s("diet_type"), b("physical_activity"),
		s("physical_activity_type"), s("frequency"),
	}})

	register(&Section{Name: "head_exam", Stage: StageRegular, Fields: []Field{
		b("altered_mobility"), b("altered_carotid_pulses"), b("thyroid_tumors"),
		b("lymphadenopathy"), tx("observations"),
	}})

	register(&Section{Name: "immunizations", Stage: StageRegular, Fields: []Field{
		b("sars_cov_2"), i("sars_cov_2_doses"), b("yellow_fever"), b("adult_tetanus"),
		b("hepatitis_a"), b("hepatitis_b"),
	}})

	register(&Section{Name: "laboral_contacts", Stage: StageRegular, Fields: []Field{
		b("dusty_environment"), d("dusty_environment_date"),
		b("noisy_environment"), d("noisy_environment_date"),
		b("animal_products"), d("animal_products_date"),
		b("chemical_products"), d("chemical_products_date"),
		b("ionizing_radiation"), d("ionizing_radiation_date"),
		b("other_contamination"), d("other_contamination_date"),
	}})

	register(&Section{Name: "laboral_exam", Stage: StageRegular, Fields: []Field{
		b("physical"), b("chemical"), b("biological"), b("ergonomic"), b("others"),
		tx("observations"),
	}})

	register(&Section{Name: "laboral_history", Stage: StageRegular, Fields: []Field{
		tx("done_tasks"),
	}})

	register(&Section{Name: "neuro_clinical_exam", Stage: StageRegular, Fields: []Field{
		b("disoriented"), b("altered_motility"), b("altered_sensitivity"), b("altered_reflexes"),
		b("apraxia"), b("ataxia"), tx("observations"),
	}})

	register(&Section{Name: "ophthalmologic_exam", Stage: StageRegular, Fields: []Field{
		fl("uncorrected_right_near"), fl("uncorrected_left_near"),
		fl("corrected_right_near"), fl("corrected_left_near"),
		fl("uncorrected_right_distant"), fl("uncorrected_left_distant"),
		fl("corrected_right_distant"), fl("corrected_left_distant"),
		b("eye_alterations"), b("dyschromatopsia"), tx("observations"),
	}})

	register(&Section{Name: "orl_exam", Stage: StageRegular, Fields: []Field{
		b("pharynx_pathology"), b("tonsil_pathology"), b("voice_alterations"), b("rhinitis"),
		b("hearing_disorders"), b("lymphadenopathy"), tx("observations"),
	}})

	register(&Section{Name: "osteoarticular_exam", Stage: StageRegular, Fields: []Field{
		b("spine_altered_mobility"), b("spine_painful_points"), b("spine_scoliosis"),
		b("spine_kyphosis"), b("spine_lordosis"), b("joint_pain"), b("movement_limitation"),
		b("muscle_tone"), b("amputations"), b("altered_shoulder_mobility"),
		b("altered_elbow_mobility"), b("altered_wrist_mobility"), b("altered_hand_mobility"),
		b("altered_hip_mobility"), b("altered_knee_mobility"), b("altered_foot_mobility"),
		tx("observations"),
	}})

	register(&Section{Name: "personal_history", Stage: StageRegular, Fields: []Field{
		b("hospitalizations"), s("hospitalization_reason"), b("covid"), b("yellow_fever"),
		b("dengue"),
	}})

	register(&Section{Name: "previous_problems", Stage: StageRegular, Fields: []Field{
		b("headache"), b("seizures"), b("dizziness_or_fainting"), b("excessive_nervousness"),
		b("memory_loss"), b("eye_problems"), b("ear_problems"), b("mouth_problems"),
		b("skin_diseases"), b("allergies"), b("sinusitis"), b("asthma"), b("long_cough"),
		b("tuberculosis"), b("chest_pain"), b("shortness_of_breath"), b("palpitations"),
		b("abnormal_blood_pressure"), b("digestive_problems"), s("others"), b("hepatitis"),
		b("hernias"), b("hemorrhoids"), b("difficulty_urinating"), b("amputations"),
		b("bone_fractures"), b("neck_pain"), b("back_pain"), b("upper_limb_pain"),
		b("lower_limb_pain"), b("flat_feet"), b("varicose_veins"), b("diabetes"),
		b("rheumatic_fever"), b("chagas"), b("sexually_transmitted_diseases"), b("cancer"),
		b("current_medication"), s("medication_type"),
	}})

	register(&Section{Name: "psychiatric_clinical_exam", Stage: StageRegular, Fields: []Field{
		b("behavior_alterations"), b("excessive_nervousness"), b("psychomotor_depression"),
		b("excessive_shyness"), tx("observations"),
	}})

	register(&Section{Name: "recommendations", Stage: StageRegular, Fields: []Field{
		b("fit"), b("fit_preexisting_not_limiting"), b("fit_preexisting_limiting"),
		b("permanently_unfit"), b("temporarily_unfit"), s("duration"), tx("observations"),
	}})

	register(&Section{Name: "respiratory_exam", Stage: StageRegular, Fields: []Field{
		fl("respiratory_rate"), b("thoracic_deformities"), b("rales"), b("rhonchi"),
		b("vesicular_murmur"), b("lymphadenopathy"), b("acute_process"), tx("observations"),
	}})

	register(&Section{Name: "skin_exam", Stage: StageRegular, Fields: []Field{
		b("skin_alteration"), b("piercing"), b("tattoo"), b("scars"), tx("observations"),
	}})

	register(&Section{Name: "studies", Stage: StageRegular, Fields: []Field{
		b("chest_xray"), b("lumbosacral_spine_xray"), b("cervical_spine_xray"),
		b("electrocardiogram"), b("audiometry"), b("psychotechnical"), b("spirometry"),
		b("ergometry"), b("ophthalmologic_evaluation"), b("psychometry"),
		b("electroencephalogram"), b("laboratory"), b("drug_screening"), b("celiac_test"),
		tx("observations"),
	}})

	register(&Section{Name: "surgeries", Stage: StageRegular, Fields: []Field{
		b("appendix"), d("appendix_date"), b("tonsils"), d("tonsils_date"),
		b("hernia"), d("hernia_date"), b("varicose_veins"), d("varicose_veins_date"),
		b("gallbladder"), d("gallbladder_date"), b("spine"), d("spine_date"),
		b("testicles"), d("testicles_date"), b("others"), d("others_date"),
	}})

	alias("genitourinario_exam", "genitourinary_exam")
	alias("oftalmologico_exam", "ophthalmologic_exam")
	alias("recomendations", "recommendations")
	alias("respiratorio_exam", "respiratory_exam")
	alias("surgerys", "surgeries")
}
