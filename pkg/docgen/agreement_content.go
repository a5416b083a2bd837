package docgen

// Fixed wording of the VAT registration agreement. Both backends render
// exactly these blocks, in this order.

const (
	agreementTitle     = "B.K.R SUPPORT SERVICES"
	agreementRefNumber = "BKR03-2025-CR702"
	signLine           = "Sign"
)

func heading(text string) Block     { return Block{Kind: BlockHeading, Text: text} }
func para(text string) Block        { return Block{Kind: BlockParagraph, Text: text} }
func list(items ...string) Block    { return Block{Kind: BlockList, Items: items} }
func spacer() Block                 { return Block{Kind: BlockSpacer} }
func paras(texts ...string) []Block { return appendParas(nil, texts...) }

func appendParas(blocks []Block, texts ...string) []Block {
	for _, t := range texts {
		blocks = append(blocks, para(t))
	}
	return blocks
}

// section is a heading followed by its body and a spacer
func section(title string, body ...Block) []Block {
	out := append([]Block{heading(title)}, body...)
	return append(out, spacer())
}

func agreementBlocks(f AgreementFields, date string) []Block {
	var b []Block
	add := func(blocks ...Block) { b = append(b, blocks...) }

	add(Block{Kind: BlockTitle, Text: agreementTitle}, spacer())

	// Agreement details
	add(paras(
		"Date: "+date,
		"Ref Number: "+agreementRefNumber,
		"Atten: "+f.Attention,
		"Email: "+f.Email,
	)...)
	add(spacer())

	// Parties
	add(paras(
		"Client/First Party: "+f.ClientName,
		"Commercial Registration Number: "+f.CommercialRegNumber,
		"Second Party/Service Provider: "+f.ServiceProviderName+", "+f.ServiceProviderCR,
	)...)
	add(spacer())

	add(section("Service Agreement for VAT Services and Business Support Services",
		para("We are thrilled to solidify our engagement with Client to provide professional services, encompassing the following terms:"),
	)...)

	add(section("Introduction:",
		para("VAT and Business Support Services are essential for businesses looking to navigate the complexities of administrative and government-related tasks. "+
			"These services, are provided by our specialized professionals, assist companies with a range of activities such as VAT filling, VAT registration and Consultancy, employee contract formalities, and compliance with local regulations. "+
			"By leveraging VAT and Business support services, Your business can ensure that they remain compliant with the latest legal requirements while focusing on their core operations. "+
			"This not only saves time and resources but also minimizes the risk of costly errors and delays. "+
			"Whether you are a startup or an established enterprise, investing in reliable consultancy services can significantly streamline your administrative processes and contribute to your overall success."),
	)...)

	add(heading("Scope of Services:"))
	add(para("Our firm is committed to providing the scope of work as mentioned below in strict adherence to the terms outlined in our discussions and any subsequent correspondence. " +
		"We assure you that our services will be executed with the utmost skill, care, and diligence."))
	add(spacer())
	add(paras("Table 1.0", "Scope of work", "The scope of work for VAT registration is:")...)
	add(list(
		"1. Submission of data on the NBR portal.",
		"2. Assistance with drafting of responses to NBR queries.",
		"3. Review of supporting to be uploaded to the NBR",
		"4. Consultancy",
	), spacer())
	add(para("VAT registration assessment:"))
	add(list(
		"1. Detailed analysis of VAT treatment of relevant income streams.",
		"2. Review of relevant contracts.",
		"3. Comments on VAT legislative requirements.",
	), spacer())
	add(para("Deliverables"))
	add(list(
		"- VAT registration",
		"- VAT consultancy",
		"- Report summarizing our findings and relevant comments.",
	), spacer())
	add(para("Any additions to the scope of work will be required through a written addendum after reaching agreement to the deliverables involved and the revised fees for services provided. " +
		"Any additional services will follow the agreed terms and conditions set forth in this Service Agreement."))
	add(spacer())
	add(para("The scope of work we've mutually agreed upon will be executed with unwavering professionalism, exceptional skill, meticulous attention to detail, and the requisite technical expertise."))
	add(spacer())

	add(heading("Fee and Payment Terms:"))
	add(para("Our professional fees are based on the degree of expertise and skills of our partners, directors and employees involved. " +
		"Where a delay in provision of information causes additional time or expenses to be incurred by us in delivering the Services, we reserve the right to increase our charges to cover that additional time and expense based on our mutual agreement."))
	add(spacer())
	add(Block{
		Kind:   BlockTable,
		Header: []string{"Our office fee", "Fees"},
		Rows: [][]string{
			{"1. VAT registration (one-time fee)", f.VATRegFee},
			{"2. For the VAT registration impact assessment and Consultancy (one-time fee)", f.ConsultancyFee},
		},
	}, spacer())
	add(paras("Billing terms", "50% nonrefundable payment", "50% before the handover of work")...)
	add(spacer())
	add(para("Invoice will be issued on the 1st of every quarterly basis and payable within 7 days of invoice issue."))
	add(spacer())
	add(para("1. VAT filling: on quarterly basis"))
	add(spacer())
	add(paras(
		"Additionally, any ancillary expenses incurred in the course of delivering services will be promptly reimbursed by the client. Invoices will be generated and are due for settlement upon receipt.",
		"By engaging us to proceed with this assignment, it is acknowledged that our fee and its payment are not dependent on the outcome of our services which are Subject to ministry approvals.",
	)...)
	add(spacer())

	add(section("Term and Termination:",
		para("Commencing on TBD, this engagement shall persist until TBD, unless terminated earlier by either party via written notice. "+
			"Each party reserves the right to terminate this engagement upon [3 months] written notice to the other party."),
	)...)

	add(section("Assumptions Regarding Scope of Work", paras(
		"The laws and regulations we are providing advice on may undergo future amendments and/or be subject to different interpretations by the relevant government authorities (for instance, NBR, the Labour authority or the Ministry of Industry and Commerce). "+
			"Our advice is formulated based on our interpretation of the laws, regulations, publicly available guidance, and our understanding of the prevailing practices of the relevant regulatory authority at the time of providing our advice. "+
			"We cannot assure a specific outcome or anticipate all technical and interpretative challenges that the Client may encounter in the future in the event of an audit or inquiry by the relevant regulatory authorities.",
		"All tasks we undertake are grounded on the information furnished by the Client. "+
			"Any validation or verification we conduct will be limited to sampling, and we will not authenticate all information provided to us. "+
			"The services rendered under this Service Agreement do not assume a management role unless explicitly mentioned in our scope of work, and we will not serve, on a temporary or permanent basis, as a director, officer, or employee of the Client.",
		"The Client will bear full and sole responsibility for exercising independent business judgment regarding our services, making and executing decisions as necessary, and determining future courses of action (including regarding our recommendations) concerning any matters addressed in the deliverables submitted to the Client.",
		"Our work will be confined to the matters outlined in this Service Agreement. "+
			"We will not be obliged to update the contents of our deliverables after their issuance date.",
		"In no event shall B.K.R Support Services, its partners, principals, or employees be liable for consequential, special, indirect, incidental, punitive, or exemplary damages, costs, expenses, or losses (including, without limitation, lost profits and opportunity costs).",
	)...)...)

	add(section("Confidentiality:",
		para("We pledge to uphold the strict confidentiality of all information shared by the client throughout our engagement, except in cases mandated by law or with explicit consent from the client."),
	)...)

	add(section("Ownership of Work Product:",
		para("Upon the full payment of all fees and expenses, all deliverables or work product generated during our engagement shall become the exclusive property of the client."),
	)...)

	add(section("Liability:", paras(
		"Our liability concerning any claim arising from or in connection with our services shall be limited to the fees paid by the client for the services giving rise to such claim. "+
			"However, this limitation of liability shall not apply in the case of fraud or willful misconduct.",
		"B.K.R Support Services (second party) will bear NO responsibility OR liability of documents or legal contracts provided by Company/Client (first party)",
	)...)...)

	add(section("Legislative Compliance:",
		para("Our firm acknowledges and agrees to comply with all applicable laws, regulations, and industry standards pertinent to the services rendered under this engagement. "+
			"We undertake to maintain accurate records and ensure full transparency in all our dealings to mitigate any risks of legislative penalties."),
	)...)

	add(section("Indemnification:",
		para("The client agrees to indemnify and hold our firm harmless against any losses, liabilities, damages, or expenses (including reasonable attorney fees) incurred as a result of any breach of this Service Agreement or any claims arising from the client's actions or omissions."),
	)...)

	add(section("Governing Law:",
		para("This engagement shall be governed by and construed in accordance with the laws of the applicable jurisdiction. "+
			"Any disputes arising from or in connection with this engagement shall be subject to the exclusive jurisdiction of the courts of Bahrain."),
	)...)

	add(section("Distribution of Deliverables:",
		para("Our deliverables, provided in any format, are confidential and intended solely for your use. "+
			"You agree not to share, reproduce, or reference them without our written consent, except for internal purposes. "+
			"Sharing them doesn't grant third-party rights, and we're not liable to third parties. "+
			"If you share them with a third party, both you and the recipient must sign a Hold Harmless Letter."),
	)...)

	add(section("Timelines",
		para("We will mutually agree on target completion dates for the work. "+
			"Our ability to meet these deadlines depends on the quality, timeliness, and availability of information. "+
			"We will make every effort to adhere to agreed timetables. "+
			"However, please note that timeframes provided are approximate and may be affected by the start of the engagement. "+
			"Delays in receiving necessary information or access to key personnel on your end may extend the completion timeframe, for which we will not be held accountable."),
	)...)

	add(section("Force Majeure:", paras(
		"a) Either party may claim an event of force majeure. "+
			"Events of force majeure are events beyond the control of either party and which either party could not foresee or reasonably provide against and which prevents either party from wholly or partly performing any duties under this Agreement, except for any events to the extent caused by intentional or gross negligent acts of the First Party, its operators, employees, or agents;",
		"b) The First Party claiming an event of force majeure which hinders the performance of its Services under this agreement, shall to the best of its ability give immediate written notice to the Second party of such event of force majeure including a statement describing the effect of such occurrence upon performance of this Agreement. "+
			"Without prejudice to the generality of the foregoing provisions, the following events shall be recognized as events of force majeure: war, natural disasters, excluding pandemics and strikes.",
	)...)...)

	add(section("Other terms:", list(
		"- All fees are Exclusive of Government Fee.",
		"- Invoice will be generated as per service agreement.",
		"- Services will be provided according to Main Business/One CR, any Branches are not included",
		"- All Jobs/requests Must be Received till 5pm, (In case any job Handed after 5 PM will be Process on second Working Day)",
	))...)

	add(section("Our Company Bank Details:", list(
		"Account Name: B.K.R Support Services",
		"Bank Name: Al Salam Bank",
		"Account No: 294395100100",
		"IBAN Number: BH39ALSA00294395100100",
		"Swift code: ALSABHBM",
		"Branch: Sanabis",
		"",
		`By Cheque: under name of "B.K.R Support Services"`,
	))...)

	add(section("Conclusion and Acceptance:", paras(
		"Please indicate your acceptance of the terms outlined in this letter by signing and returning a copy to us. "+
			"Should you require any further clarification or have additional inquiries, please do not hesitate to contact us.",
		"We eagerly anticipate the opportunity to collaborate with you and deliver exceptional service, while ensuring full compliance with all applicable laws and regulations.",
	)...)...)

	// Signature block
	add(paras("Yours sincerely,", "On Behalf of,", "B.K.R Support Services")...)
	add(spacer(), para("Director"), spacer())
	add(Block{Kind: BlockSignature, Text: signLine}, spacer())
	add(para("Authorized Person Name: "+f.AuthorizedPerson), spacer())

	add(Block{Kind: BlockFooter, Items: []string{
		"p : 75069  |  t : +97333500126  |  e : infobkr@bkrgroup.co  |  w : www.bkrgroup.co",
		"Bldg 2196 | Office 101 | 10th Floor Road 3640 | Block 436 | Al Seef Kingdom of Bahrain",
	}})

	return b
}
