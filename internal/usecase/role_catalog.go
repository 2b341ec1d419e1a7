package usecase

// DefaultRoles is the built-in catalogue loaded by cmd/seed-roles.
var DefaultRoles = []RoleSeed{
	{
		Title:   "Backend Engineer",
		Content: "Designs and builds server-side services and APIs. Go, Java, Python or Node.js; PostgreSQL and MySQL; REST and gRPC; message queues; caching; cloud deployment on AWS or GCP; automated testing and CI/CD.",
	},
	{
		Title:   "Frontend Engineer",
		Content: "Builds responsive web interfaces. React or Vue, TypeScript, Tailwind CSS, state management, accessibility, browser performance, component testing and close work with designers.",
	},
	{
		Title:   "Full Stack Engineer",
		Content: "Delivers features end to end across web frontend and backend. JavaScript or TypeScript, a server framework, relational databases, REST APIs, deployment and monitoring.",
	},
	{
		Title:   "Mobile Engineer",
		Content: "Builds iOS and Android applications with Swift, Kotlin, Flutter or React Native. Offline storage, push notifications, app store releases and crash reporting.",
	},
	{
		Title:   "DevOps / Site Reliability Engineer",
		Content: "Runs production infrastructure. Kubernetes, Docker, Terraform, CI/CD pipelines, observability with Prometheus and Grafana, incident response, capacity planning and cost control.",
	},
	{
		Title:   "Data Engineer",
		Content: "Builds data pipelines and warehouses. SQL, Python, Spark, Airflow, dbt, Kafka, BigQuery or Snowflake, data modelling and data quality checks.",
	},
	{
		Title:   "Data Scientist",
		Content: "Turns data into decisions. Statistics, experimentation and A/B testing, Python, pandas, scikit-learn, SQL, dashboards and communicating insights to stakeholders.",
	},
	{
		Title:   "Machine Learning Engineer",
		Content: "Trains and serves ML models in production. PyTorch or TensorFlow, feature pipelines, model evaluation, MLOps, LLM APIs, embeddings, vector databases and retrieval-augmented generation.",
	},
	{
		Title:   "Product Manager",
		Content: "Owns product discovery and delivery. Roadmaps, user research, requirements, prioritisation, metrics and KPIs, stakeholder management and working with engineering and design.",
	},
	{
		Title:   "UI/UX Designer",
		Content: "Designs user experiences and interfaces. Figma, wireframes, prototypes, design systems, usability testing, user research and interaction design.",
	},
	{
		Title:   "QA Engineer",
		Content: "Ensures software quality. Test planning, manual and automated testing, Selenium, Playwright or Cypress, API testing, regression suites and defect tracking.",
	},
	{
		Title:   "Project Manager",
		Content: "Plans and delivers projects on time and budget. Scope and schedule management, Agile and Scrum, risk management, resource planning and status reporting.",
	},
	{
		Title:   "Marketing Specialist",
		Content: "Plans and runs campaigns. Digital marketing, SEO and SEM, content strategy, social media, email marketing, analytics and campaign performance reporting.",
	},
	{
		Title:   "Sales Executive",
		Content: "Grows revenue through new and existing accounts. Prospecting, pipeline management, CRM, negotiation, closing deals and meeting quota.",
	},
	{
		Title:   "Financial Analyst",
		Content: "Supports financial decisions. Financial modelling, budgeting and forecasting, variance analysis, Excel, reporting to management and investment analysis.",
	},
}
